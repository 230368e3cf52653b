package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/min_commerce/internal/logging"
	"github.com/Skotchmaster/min_commerce/internal/mykafka"
	"github.com/Skotchmaster/min_commerce/internal/service/order"
)

type OrderHandler struct {
	Service  *order.Service
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func userIDFromContext(c echo.Context) uint {
	if v, ok := c.Get("userID").(uint); ok {
		return v
	}
	return 0
}

// CreateOrder is the order submission boundary: it binds the checkout
// payload, runs the placement protocol and maps its error kinds onto
// HTTP statuses.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")

	var req order.PlaceRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("order_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := h.Service.Place(ctx, userIDFromContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidRequest),
			errors.Is(err, order.ErrInsufficientStock),
			errors.Is(err, order.ErrTotalMismatch):
			l.Warn("order_rejected", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, order.ErrProductNotFound):
			l.Warn("order_rejected", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			l.Error("order_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	h.publish(c, fmt.Sprint(created.ID), map[string]any{
		"type":    "order_created",
		"orderID": created.ID,
		"userID":  created.UserID,
		"total":   created.Total,
	})

	l.Info("order_created", "orderID", created.ID, "total", created.Total)
	return c.JSON(http.StatusCreated, created)
}

// GetOrders lists the authenticated user's orders newest-first. Admins
// see every order.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()

	if role, ok := c.Get("role").(string); ok && role == "admin" {
		orders, err := h.Service.List(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		return c.JSON(http.StatusOK, orders)
	}

	orders, err := h.Service.ListForUser(ctx, userIDFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}
