package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/events"
	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/search"
	"github.com/warodomh/marketplace/internal/storage"
	"github.com/warodomh/marketplace/internal/token"
	"github.com/warodomh/marketplace/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Producer *events.Producer
	Storage  *storage.Storage
}

// List returns active products, paginated, with optional category, seller
// and price range filters.
func (h *ProductHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{}).Where("is_active = ?", true)
	if v := c.QueryParam("category_id"); v != "" {
		q = q.Where("category_id = ?", v)
	}
	if v := c.QueryParam("seller_id"); v != "" {
		q = q.Where("seller_id = ?", v)
	}
	if v := c.QueryParam("min_price"); v != "" {
		q = q.Where("price >= ?", v)
	}
	if v := c.QueryParam("max_price"); v != "" {
		q = q.Where("price <= ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var products []models.Product
	if err := q.Order("created_at DESC").Offset(from).Limit(limit).Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = util.DefaultPageSize
	}
	return response.Data(c, http.StatusOK, "products", response.NewPaged(products, page, size, total))
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "product", product)
}

// sellerOf resolves the seller profile of the authenticated user.
func sellerOf(db *gorm.DB, c echo.Context) (*models.Seller, error) {
	var seller models.Seller
	if err := db.Where("user_id = ?", token.UserID(c)).First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusForbidden, "seller profile required")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return &seller, nil
}

func (h *ProductHandler) Create(c echo.Context) error {
	seller, err := sellerOf(h.DB, c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		CategoryID  uint    `json:"category_id"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		Unit        string  `json:"unit"`
		ImageURL    string  `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Price <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name and a positive price are required")
	}
	if req.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "stock cannot be negative")
	}

	product := models.Product{
		SellerID:    seller.ID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Unit:        req.Unit,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()
	if err := search.Index(ctx, h.ES, &product); err != nil {
		c.Logger().Warnf("index product %d: %v", product.ID, err)
	}
	publish(c, h.Producer, events.TopicProductEvents, "product", map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"sellerID":  seller.ID,
	})

	return response.Data(c, http.StatusCreated, "product created", product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	product, herr := h.ownedProduct(c, uint(id))
	if herr != nil {
		return herr
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		CategoryID  *uint    `json:"category_id"`
		Price       *float64 `json:"price"`
		Unit        *string  `json:"unit"`
		ImageURL    *string  `json:"image_url"`
		IsActive    *bool    `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "price must be positive")
		}
		product.Price = *req.Price
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.DB.Save(product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()
	if err := search.Index(ctx, h.ES, product); err != nil {
		c.Logger().Warnf("index product %d: %v", product.ID, err)
	}
	publish(c, h.Producer, events.TopicProductEvents, "product", map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
	})

	return response.Data(c, http.StatusOK, "product updated", product)
}

// UpdateStock sets the absolute stock level of an owned product.
func (h *ProductHandler) UpdateStock(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	product, herr := h.ownedProduct(c, uint(id))
	if herr != nil {
		return herr
	}

	var req struct {
		Stock int `json:"stock"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "stock cannot be negative")
	}

	if err := h.DB.Model(product).Update("stock", req.Stock).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "stock updated", product)
}

// Delete deactivates the product rather than removing the row, so order
// items keep a valid reference.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	product, herr := h.ownedProduct(c, uint(id))
	if herr != nil {
		return herr
	}

	if err := h.DB.Model(product).Update("is_active", false).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()
	if err := search.Delete(ctx, h.ES, product.ID); err != nil {
		c.Logger().Warnf("deindex product %d: %v", product.ID, err)
	}
	publish(c, h.Producer, events.TopicProductEvents, "product", map[string]any{
		"type":      "product_deleted",
		"productID": product.ID,
	})

	return response.Message(c, http.StatusOK, "product deleted")
}

// UploadImage stores a product photo and points the product at it.
func (h *ProductHandler) UploadImage(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	product, herr := h.ownedProduct(c, uint(id))
	if herr != nil {
		return herr
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	result, err := h.Storage.Save("products", "product", file.Filename, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if product.ImageURL != "" {
		if err := h.Storage.DeleteByURL(product.ImageURL); err != nil {
			c.Logger().Warnf("remove old product image: %v", err)
		}
	}
	if err := h.DB.Model(product).Update("image_url", result.URL).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "image uploaded", result)
}

// ownedProduct loads the product and checks the caller may manage it:
// an admin, or the seller who owns it.
func (h *ProductHandler) ownedProduct(c echo.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if token.Role(c) == models.RoleAdmin {
		return &product, nil
	}
	seller, err := sellerOf(h.DB, c)
	if err != nil {
		return nil, err
	}
	if product.SellerID != seller.ID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "product belongs to another seller")
	}
	return &product, nil
}
