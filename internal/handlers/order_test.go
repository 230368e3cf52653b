package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/min_commerce/internal/models"
)

func orderPayload(productID uint, qty uint, total float64) map[string]interface{} {
	return map[string]interface{}{
		"customerName":  "Ada Lovelace",
		"customerEmail": "ada@example.com",
		"items": []map[string]interface{}{
			{"productId": productID, "quantity": qty},
		},
		"total": total,
	}
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("widget", "Widget", 10.00, 5)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", orderPayload(p.ID, 2, 20.00))
	c.Set("userID", uint(1))
	require.NoError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.Equal(t, uint(1), created.UserID)
	require.InDelta(t, 20.00, created.Total, 1e-9)
	require.Equal(t, models.OrderStatusPending, created.Status)

	var stored models.Product
	require.NoError(t, env.DB.First(&stored, p.ID).Error)
	require.Equal(t, uint(3), stored.Stock)
}

func TestCreateOrderErrorStatuses(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("widget", "Widget", 10.00, 1)

	// more than in stock
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", orderPayload(p.ID, 5, 50.00))
	requireHTTPError(t, env.Orders.CreateOrder(c), http.StatusBadRequest)

	// unknown product
	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/orders", orderPayload(9999, 1, 10.00))
	requireHTTPError(t, env.Orders.CreateOrder(c), http.StatusNotFound)

	// stale client total
	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/orders", orderPayload(p.ID, 1, 7.00))
	requireHTTPError(t, env.Orders.CreateOrder(c), http.StatusBadRequest)

	// missing customer fields
	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": p.ID, "quantity": 1}},
		"total": 10.00,
	})
	requireHTTPError(t, env.Orders.CreateOrder(c), http.StatusBadRequest)

	// none of the rejections touched inventory or created rows
	var stored models.Product
	require.NoError(t, env.DB.First(&stored, p.ID).Error)
	require.Equal(t, uint(1), stored.Stock)
	var count int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestGetOrdersScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("widget", "Widget", 10.00, 10)

	for _, userID := range []uint{1, 2} {
		_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", orderPayload(p.ID, 1, 10.00))
		c.Set("userID", userID)
		require.NoError(t, env.Orders.CreateOrder(c))
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/orders", nil)
	c.Set("userID", uint(1))
	c.Set("role", "user")
	require.NoError(t, env.Orders.GetOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var mine []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	require.Equal(t, uint(1), mine[0].UserID)

	recAdmin, cAdmin := env.doJSONRequest(http.MethodGet, "/api/v1/orders", nil)
	cAdmin.Set("userID", uint(3))
	cAdmin.Set("role", "admin")
	require.NoError(t, env.Orders.GetOrders(cAdmin))

	var all []models.Order
	require.NoError(t, json.Unmarshal(recAdmin.Body.Bytes(), &all))
	require.Len(t, all, 2)
}
