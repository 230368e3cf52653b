package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/min_commerce/internal/models"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")    // 400
	ErrProductNotFound   = errors.New("product not found")  // 404
	ErrInsufficientStock = errors.New("insufficient stock") // 400
	ErrTotalMismatch     = errors.New("total mismatch")     // 400
)

// totalTolerance absorbs currency rounding between the client-computed
// total and the authoritative one.
const totalTolerance = 0.01

type Line struct {
	ProductID uint `json:"productId"`
	Quantity  uint `json:"quantity"`
}

type PlaceRequest struct {
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	Items         []Line  `json:"items"`
	Total         float64 `json:"total"`
}

type Service struct {
	DB *gorm.DB
}

// Place validates the requested lines against live inventory, recomputes
// the authoritative total from current prices and commits the order, its
// items and the stock decrements as one transaction. Any validation
// failure aborts before any write.
//
// The stock re-check is folded into the decrement's WHERE clause, so two
// concurrent placements over the same product serialize: the second one
// affects zero rows and the whole transaction rolls back.
func (s *Service) Place(ctx context.Context, userID uint, req PlaceRequest) (*models.Order, error) {
	if req.CustomerName == "" || req.CustomerEmail == "" || len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: name, email and items are required", ErrInvalidRequest)
	}
	for _, line := range req.Items {
		if line.ProductID == 0 {
			return nil, fmt.Errorf("%w: productId is required", ErrInvalidRequest)
		}
		if line.Quantity == 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0", ErrInvalidRequest)
		}
	}

	var created models.Order
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]models.OrderItem, 0, len(req.Items))
		names := make(map[uint]string, len(req.Items))

		for _, line := range req.Items {
			var p models.Product
			if err := tx.First(&p, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
				}
				return err
			}
			if p.Stock < line.Quantity {
				return fmt.Errorf("%w for %s", ErrInsufficientStock, p.Name)
			}

			names[p.ID] = p.Name
			total += p.Price * float64(line.Quantity)
			items = append(items, models.OrderItem{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				Price:     p.Price,
			})
		}

		if math.Abs(total-req.Total) > totalTolerance {
			return fmt.Errorf("%w: got %.2f, expected %.2f", ErrTotalMismatch, req.Total, total)
		}

		created = models.Order{
			UserID:        userID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			Total:         total,
			Status:        models.OrderStatusPending,
			CreatedAt:     time.Now(),
			Items:         items,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		for _, line := range req.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Someone bought it between our read and this write.
				return fmt.Errorf("%w for %s", ErrInsufficientStock, names[line.ProductID])
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := s.DB.WithContext(ctx).
		Preload("Items.Product").
		First(&created, created.ID).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// List returns all orders newest-first with their items and product
// snapshots.
func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListForUser returns one user's orders newest-first.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
