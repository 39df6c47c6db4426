package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhtran205/fashion-shop/internal/logging"
	auth "github.com/minhtran205/fashion-shop/internal/middleware/auth"
	"github.com/minhtran205/fashion-shop/internal/mykafka"
	"github.com/minhtran205/fashion-shop/internal/service/order"
)

type OrderHandler struct {
	Svc      *order.Service
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func orderError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, order.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrIllegalTransition):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")

	user := auth.CurrentUser(c)

	var req order.CreateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("order_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := h.Svc.CreateOrder(ctx, user.ID, req)
	if err != nil {
		l.Warn("order_create_failed", "error", err)
		return orderError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"orderID": created.ID,
		"userID":  user.ID,
		"total":   created.TotalPrice,
	})

	l.Info("order_create_success", "orderID", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	orders, err := h.Svc.ListMyOrders(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetAllOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.Svc.ListAllOrders(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_update_status")

	user := auth.CurrentUser(c)

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	updated, err := h.Svc.UpdateStatus(ctx, id, req.Status, user)
	if err != nil {
		l.Warn("order_update_status_failed", "orderID", id, "error", err)
		return orderError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_status_updated",
		"orderID": updated.ID,
		"status":  updated.Status,
	})

	l.Info("order_update_status_success", "orderID", updated.ID, "status", updated.Status)
	return c.JSON(http.StatusOK, updated)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_cancel")

	user := auth.CurrentUser(c)

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	cancelled, err := h.Svc.CancelOrder(ctx, id, user)
	if err != nil {
		l.Warn("order_cancel_failed", "orderID", id, "error", err)
		return orderError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_cancelled",
		"orderID": cancelled.ID,
		"userID":  cancelled.UserID,
	})

	l.Info("order_cancel_success", "orderID", cancelled.ID)
	return c.JSON(http.StatusOK, cancelled)
}
