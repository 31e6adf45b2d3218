package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/warodomh/marketplace/internal/events"
	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/service/order"
)

func newOrderHandler(t *testing.T) (*OrderHandler, *echo.Echo) {
	t.Helper()
	db := initTestDB(t)
	return &OrderHandler{
		DB:       db,
		Orders:   &order.Service{DB: db, CommissionRate: 10},
		Producer: &events.Producer{},
	}, echo.New()
}

func TestPlaceFromCart(t *testing.T) {
	h, e := newOrderHandler(t)

	buyer := createUser(t, h.DB, "buyer@example.com", models.RoleCustomer)
	_, seller := createSeller(t, h.DB, "seller@example.com")
	product := createProduct(t, h.DB, seller.ID, "dried mango", 65, 8)
	require.NoError(t, h.DB.Create(&models.CartItem{UserID: buyer.ID, ProductID: product.ID, Quantity: 2}).Error)

	// No explicit items: the whole cart becomes the order.
	c, rec := newContext(t, e, http.MethodPost, "/api/v1/orders", map[string]any{}, &buyer)
	require.NoError(t, h.Place(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var placed models.Order
	require.NoError(t, h.DB.Preload("Items").Where("user_id = ?", buyer.ID).First(&placed).Error)
	require.Equal(t, 130.0, placed.TotalAmount)
	require.Len(t, placed.Items, 1)

	var cartCount int64
	require.NoError(t, h.DB.Model(&models.CartItem{}).Where("user_id = ?", buyer.ID).Count(&cartCount).Error)
	require.Zero(t, cartCount)
}

func TestPlaceEmptyCart(t *testing.T) {
	h, e := newOrderHandler(t)
	buyer := createUser(t, h.DB, "buyer@example.com", models.RoleCustomer)

	c, _ := newContext(t, e, http.MethodPost, "/api/v1/orders", map[string]any{}, &buyer)
	requireHTTPError(t, h.Place(c), http.StatusBadRequest)
}

func TestPlaceInsufficientStock(t *testing.T) {
	h, e := newOrderHandler(t)

	buyer := createUser(t, h.DB, "buyer@example.com", models.RoleCustomer)
	_, seller := createSeller(t, h.DB, "seller@example.com")
	product := createProduct(t, h.DB, seller.ID, "limited batch", 100, 1)

	c, _ := newContext(t, e, http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"product_id": product.ID, "quantity": 3}},
	}, &buyer)
	requireHTTPError(t, h.Place(c), http.StatusBadRequest)
}

func TestGetEnforcesOwnership(t *testing.T) {
	h, e := newOrderHandler(t)

	buyer := createUser(t, h.DB, "buyer@example.com", models.RoleCustomer)
	stranger := createUser(t, h.DB, "stranger@example.com", models.RoleCustomer)
	admin := createUser(t, h.DB, "admin@example.com", models.RoleAdmin)
	_, seller := createSeller(t, h.DB, "seller@example.com")
	product := createProduct(t, h.DB, seller.ID, "tea", 30, 10)

	placed, err := h.Orders.PlaceOrder(context.Background(), buyer.ID, []order.Line{{ProductID: product.ID, Quantity: 1}}, "", "promptpay")
	require.NoError(t, err)

	c, rec := newContext(t, e, http.MethodGet, "/", nil, &buyer)
	c.SetParamNames("id")
	c.SetParamValues(itoa(placed.ID))
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c2, _ := newContext(t, e, http.MethodGet, "/", nil, &stranger)
	c2.SetParamNames("id")
	c2.SetParamValues(itoa(placed.ID))
	requireHTTPError(t, h.Get(c2), http.StatusForbidden)

	c3, rec3 := newContext(t, e, http.MethodGet, "/", nil, &admin)
	c3.SetParamNames("id")
	c3.SetParamValues(itoa(placed.ID))
	require.NoError(t, h.Get(c3))
	require.Equal(t, http.StatusOK, rec3.Code)
}

func TestCancelEndpoint(t *testing.T) {
	h, e := newOrderHandler(t)

	buyer := createUser(t, h.DB, "buyer@example.com", models.RoleCustomer)
	_, seller := createSeller(t, h.DB, "seller@example.com")
	product := createProduct(t, h.DB, seller.ID, "coconut", 20, 10)

	placed, err := h.Orders.PlaceOrder(context.Background(), buyer.ID, []order.Line{{ProductID: product.ID, Quantity: 4}}, "", "promptpay")
	require.NoError(t, err)

	c, rec := newContext(t, e, http.MethodPost, "/", nil, &buyer)
	c.SetParamNames("id")
	c.SetParamValues(itoa(placed.ID))
	require.NoError(t, h.Cancel(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.Product
	require.NoError(t, h.DB.First(&p, product.ID).Error)
	require.Equal(t, 10, p.Stock)

	// Cancelled is terminal.
	c2, _ := newContext(t, e, http.MethodPost, "/", nil, &buyer)
	c2.SetParamNames("id")
	c2.SetParamValues(itoa(placed.ID))
	requireHTTPError(t, h.Cancel(c2), http.StatusConflict)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	h, e := newOrderHandler(t)

	buyer := createUser(t, h.DB, "buyer@example.com", models.RoleCustomer)
	admin := createUser(t, h.DB, "admin@example.com", models.RoleAdmin)
	_, seller := createSeller(t, h.DB, "seller@example.com")
	product := createProduct(t, h.DB, seller.ID, "basket", 120, 3)

	placed, err := h.Orders.PlaceOrder(context.Background(), buyer.ID, []order.Line{{ProductID: product.ID, Quantity: 1}}, "", "promptpay")
	require.NoError(t, err)

	c, rec := newContext(t, e, http.MethodPatch, "/", map[string]any{"status": models.OrderConfirmed}, &admin)
	c.SetParamNames("id")
	c.SetParamValues(itoa(placed.ID))
	require.NoError(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Skipping straight to Delivered violates the transition table.
	c2, _ := newContext(t, e, http.MethodPatch, "/", map[string]any{"status": models.OrderDelivered}, &admin)
	c2.SetParamNames("id")
	c2.SetParamValues(itoa(placed.ID))
	requireHTTPError(t, h.UpdateStatus(c2), http.StatusConflict)
}
