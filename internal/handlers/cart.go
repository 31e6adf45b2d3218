package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/events"
	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/token"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

// cartLine is a cart row joined with its product's current state.
type cartLine struct {
	models.CartItem
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
	InStock     bool    `json:"in_stock"`
}

func (h *CartHandler) Get(c echo.Context) error {
	userID := token.UserID(c)

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Order("added_at").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	lines := make([]cartLine, 0, len(items))
	var total float64
	for _, item := range items {
		var p models.Product
		if err := h.DB.First(&p, item.ProductID).Error; err != nil {
			continue
		}
		line := cartLine{
			CartItem:    item,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			LineTotal:   p.Price * float64(item.Quantity),
			InStock:     p.IsActive && p.Stock >= int(item.Quantity),
		}
		total += line.LineTotal
		lines = append(lines, line)
	}

	return response.Data(c, http.StatusOK, "cart", map[string]any{
		"items": lines,
		"total": total,
	})
}

// Add puts a product in the cart, merging with an existing row for the
// same product.
func (h *CartHandler) Add(c echo.Context) error {
	userID := token.UserID(c)

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !product.IsActive {
		return echo.NewHTTPError(http.StatusBadRequest, "product is not available")
	}

	var item models.CartItem
	err := h.DB.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		item.UpdatedAt = time.Now()
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			AddedAt:   time.Now(),
		}
		if err := h.DB.Create(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, events.TopicCartEvents, "cart", map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})

	return response.Data(c, http.StatusOK, "added to cart", item)
}

// UpdateQuantity sets the absolute quantity of one cart row.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	userID := token.UserID(c)
	productID, err := strconv.ParseUint(c.Param("productID"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
	}

	var item models.CartItem
	if err := h.DB.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not in cart")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item.Quantity = req.Quantity
	item.UpdatedAt = time.Now()
	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "quantity updated", item)
}

func (h *CartHandler) Remove(c echo.Context) error {
	userID := token.UserID(c)
	productID, err := strconv.ParseUint(c.Param("productID"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	res := h.DB.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "item not in cart")
	}

	publish(c, h.Producer, events.TopicCartEvents, "cart", map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})

	return response.Message(c, http.StatusOK, "removed from cart")
}

func (h *CartHandler) Clear(c echo.Context) error {
	userID := token.UserID(c)
	if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Message(c, http.StatusOK, "cart cleared")
}
