package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/min_commerce/internal/models"
)

const (
	recentOrdersLimit = 20
	lowStockThreshold = 10
)

type AdminHandler struct {
	DB *gorm.DB
}

type userSummary struct {
	models.User
	OrderCount int64 `json:"order_count"`
}

type productSummary struct {
	models.Product
	UnitsSold int64 `json:"units_sold"`
}

// Dashboard assembles the admin read models: who buys, what sells, what
// is about to run out.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	userSummaries := make([]userSummary, 0, len(users))
	for _, u := range users {
		var count int64
		if err := h.DB.Model(&models.Order{}).Where("user_id = ?", u.ID).Count(&count).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		userSummaries = append(userSummaries, userSummary{User: u, OrderCount: count})
	}

	var recentOrders []models.Order
	if err := h.DB.Preload("Items.Product").
		Order("created_at DESC").
		Limit(recentOrdersLimit).
		Find(&recentOrders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var products []models.Product
	if err := h.DB.Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	productSummaries := make([]productSummary, 0, len(products))
	lowStock := make([]models.Product, 0)
	for _, p := range products {
		var sold struct {
			Total int64
		}
		if err := h.DB.Model(&models.OrderItem{}).
			Select("COALESCE(SUM(quantity), 0) AS total").
			Where("product_id = ?", p.ID).
			Scan(&sold).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		productSummaries = append(productSummaries, productSummary{Product: p, UnitsSold: sold.Total})
		if p.Stock < lowStockThreshold {
			lowStock = append(lowStock, p)
		}
	}

	var revenue struct {
		Total float64
	}
	if err := h.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Scan(&revenue).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":         userSummaries,
		"recent_orders": recentOrders,
		"products":      productSummaries,
		"low_stock":     lowStock,
		"total_revenue": revenue.Total,
		"total_orders":  len(recentOrders),
		"total_users":   len(userSummaries),
	})
}
