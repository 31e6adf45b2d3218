package handlers

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/service/order"
)

func newPaymentHandler(t *testing.T) (*PaymentHandler, *echo.Echo) {
	t.Helper()
	db := initTestDB(t)
	return &PaymentHandler{
		DB:          db,
		Orders:      &order.Service{DB: db, CommissionRate: 10},
		PromptPayID: "0610816643",
	}, echo.New()
}

func TestQRCodeEndpoint(t *testing.T) {
	h, e := newPaymentHandler(t)

	c, rec := newContext(t, e, http.MethodGet, "/api/v1/payments/qrcode?amount=100.00", nil, nil)
	require.NoError(t, h.QRCode(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestQRCodeEndpointValidation(t *testing.T) {
	h, e := newPaymentHandler(t)

	c, _ := newContext(t, e, http.MethodGet, "/api/v1/payments/qrcode", nil, nil)
	requireHTTPError(t, h.QRCode(c), http.StatusBadRequest)

	c2, _ := newContext(t, e, http.MethodGet, "/api/v1/payments/qrcode?amount=-5", nil, nil)
	requireHTTPError(t, h.QRCode(c2), http.StatusBadRequest)
}

func TestPayloadEndpoint(t *testing.T) {
	h, e := newPaymentHandler(t)

	c, rec := newContext(t, e, http.MethodGet, "/api/v1/payments/payload?amount=100.00", nil, nil)
	require.NoError(t, h.Payload(c))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	require.Equal(t,
		"00020101021129370016A0000006770101110113006661081664353037645406100.005802TH63048A9F",
		data["payload"])
}

func TestConfirmEndpoint(t *testing.T) {
	h, e := newPaymentHandler(t)

	buyer := createUser(t, h.DB, "buyer@example.com", models.RoleCustomer)
	_, seller := createSeller(t, h.DB, "seller@example.com")
	product := createProduct(t, h.DB, seller.ID, "honey", 150, 5)

	placed, err := h.Orders.PlaceOrder(context.Background(), buyer.ID,
		[]order.Line{{ProductID: product.ID, Quantity: 1}}, "", "promptpay")
	require.NoError(t, err)

	admin := createUser(t, h.DB, "admin@example.com", models.RoleAdmin)

	c, rec := newContext(t, e, http.MethodPost, "/", map[string]any{"reference_code": "KBANK-777"}, &admin)
	c.SetParamNames("orderID")
	c.SetParamValues(itoa(placed.ID))
	require.NoError(t, h.Confirm(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var payment models.Payment
	require.NoError(t, h.DB.Where("order_id = ?", placed.ID).First(&payment).Error)
	require.Equal(t, models.PaymentPaid, payment.Status)
	require.Equal(t, "KBANK-777", payment.ReferenceCode)

	// Second confirmation conflicts.
	c2, _ := newContext(t, e, http.MethodPost, "/", map[string]any{"reference_code": "KBANK-777"}, &admin)
	c2.SetParamNames("orderID")
	c2.SetParamValues(itoa(placed.ID))
	requireHTTPError(t, h.Confirm(c2), http.StatusConflict)
}
