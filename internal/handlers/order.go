package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/events"
	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/service/order"
	"github.com/warodomh/marketplace/internal/token"
)

type OrderHandler struct {
	DB       *gorm.DB
	Orders   *order.Service
	Producer *events.Producer
}

// Place builds an order from the request lines or, when none are given,
// from the caller's whole cart.
func (h *OrderHandler) Place(c echo.Context) error {
	userID := token.UserID(c)

	var req struct {
		Items  []order.Line `json:"items"`
		Note   string       `json:"note"`
		Method string       `json:"method"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Method == "" {
		req.Method = "promptpay"
	}

	lines := req.Items
	if len(lines) == 0 {
		var cartItems []models.CartItem
		if err := h.DB.Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		for _, item := range cartItems {
			lines = append(lines, order.Line{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}

	placed, err := h.Orders.PlaceOrder(c.Request().Context(), userID, lines, req.Note, req.Method)
	if err != nil {
		return orderError(err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, "order", map[string]any{
		"type":        "order_placed",
		"orderID":     placed.ID,
		"orderNumber": placed.OrderNumber,
		"userID":      userID,
		"total":       placed.TotalAmount,
	})

	return response.Data(c, http.StatusCreated, "order placed", placed)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	orders, err := h.Orders.GetByUser(c.Request().Context(), token.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "orders", orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	o, err := h.Orders.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		return orderError(err)
	}
	if o.UserID != token.UserID(c) && token.Role(c) != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "order belongs to another user")
	}
	return response.Data(c, http.StatusOK, "order", o)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	if err := h.Orders.Cancel(c.Request().Context(), uint(id), token.UserID(c)); err != nil {
		return orderError(err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, "order", map[string]any{
		"type":    "order_cancelled",
		"orderID": id,
	})

	return response.Message(c, http.StatusOK, "order cancelled")
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.Orders.UpdateStatus(c.Request().Context(), uint(id), token.UserID(c), token.Role(c), req.Status); err != nil {
		return orderError(err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, "order", map[string]any{
		"type":    "order_status_changed",
		"orderID": id,
		"status":  req.Status,
	})

	return response.Message(c, http.StatusOK, "status updated")
}

// ListForSeller returns the caller's order items across all orders.
func (h *OrderHandler) ListForSeller(c echo.Context) error {
	seller, err := sellerOf(h.DB, c)
	if err != nil {
		return err
	}
	items, err := h.Orders.GetBySeller(c.Request().Context(), seller.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "seller orders", items)
}

func (h *OrderHandler) ListAll(c echo.Context) error {
	orders, err := h.Orders.GetAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "orders", orders)
}

// orderError maps the order service's sentinel errors onto HTTP statuses.
func orderError(err error) error {
	switch {
	case errors.Is(err, order.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrStateConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
