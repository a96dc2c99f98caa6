package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/menushare/internal/logging"
	authmw "github.com/Skotchmaster/menushare/internal/middleware/auth"
	"github.com/Skotchmaster/menushare/internal/service"
	"github.com/Skotchmaster/menushare/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) SubmitOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.submit_order")

	var req transport.SubmitOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("submit_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.SubmitOrder(ctx, req)
	if err != nil {
		return fail(l, "submit_order_error", err, "cannot submit order")
	}

	l.Info("submit_order_success", "order_id", order.ID, "menu_id", order.MenuID)
	return c.JSON(http.StatusCreated, transport.SubmitOrderResponse{Success: true, ID: order.ID})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("list_orders_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	orders, err := h.Svc.ListOrders(ctx, authmw.UserID(c), id)
	if err != nil {
		return fail(l, "list_orders_error", err, "cannot list orders")
	}

	l.Info("list_orders_success", "menu_id", id, "count", len(orders))
	return c.JSON(http.StatusOK, orders)
}
