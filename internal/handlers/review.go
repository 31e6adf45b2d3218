package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/service/review"
	"github.com/warodomh/marketplace/internal/token"
)

type ReviewHandler struct {
	Reviews *review.Service
}

func (h *ReviewHandler) Create(c echo.Context) error {
	var req struct {
		ProductID uint   `json:"product_id"`
		OrderID   uint   `json:"order_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
		ImageURL  string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	r, err := h.Reviews.Create(c.Request().Context(), token.UserID(c),
		req.ProductID, req.OrderID, req.Rating, req.Comment, req.ImageURL)
	if err != nil {
		return reviewError(err)
	}
	return response.Data(c, http.StatusCreated, "review created", r)
}

func (h *ReviewHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid review id")
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	r, err := h.Reviews.Update(c.Request().Context(), uint(id), token.UserID(c), req.Rating, req.Comment)
	if err != nil {
		return reviewError(err)
	}
	return response.Data(c, http.StatusOK, "review updated", r)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid review id")
	}

	if err := h.Reviews.Delete(c.Request().Context(), uint(id), token.UserID(c), token.Role(c)); err != nil {
		return reviewError(err)
	}
	return response.Message(c, http.StatusOK, "review deleted")
}

func (h *ReviewHandler) ListByProduct(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("productID"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	reviews, err := h.Reviews.ListByProduct(c.Request().Context(), uint(productID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "reviews", reviews)
}

func (h *ReviewHandler) ListMine(c echo.Context) error {
	reviews, err := h.Reviews.ListByUser(c.Request().Context(), token.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "reviews", reviews)
}

func reviewError(err error) error {
	switch {
	case errors.Is(err, review.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, review.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, review.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
