package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/promptpay"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/service/order"
)

type PaymentHandler struct {
	DB     *gorm.DB
	Orders *order.Service

	// PromptPayID is the platform's receiving account: a mobile number
	// or a 13-digit national/tax id.
	PromptPayID string
}

// QRCode renders a static PromptPay QR for the requested amount as PNG.
func (h *PaymentHandler) QRCode(c echo.Context) error {
	amount, err := strconv.ParseFloat(c.QueryParam("amount"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "amount query parameter is required")
	}

	payload, err := promptpay.BuildPayload(h.PromptPayID, amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	png, err := promptpay.QRCodePNG(payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", png)
}

// Payload returns the raw TLV string, for clients that render the QR
// themselves.
func (h *PaymentHandler) Payload(c echo.Context) error {
	amount, err := strconv.ParseFloat(c.QueryParam("amount"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "amount query parameter is required")
	}

	payload, err := promptpay.BuildPayload(h.PromptPayID, amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return response.Data(c, http.StatusOK, "payload", map[string]string{"payload": payload})
}

// Confirm marks an order's payment as received. Admin only; hooked up to
// manual slip verification until a gateway integration exists.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		ReferenceCode string `json:"reference_code"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.Orders.ConfirmPayment(c.Request().Context(), uint(orderID), req.ReferenceCode); err != nil {
		return orderError(err)
	}
	return response.Message(c, http.StatusOK, "payment confirmed")
}
