package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/response"
)

// ContentHandler serves the editorial surfaces of the storefront:
// homepage banners and local culture articles.
type ContentHandler struct {
	DB *gorm.DB
}

func (h *ContentHandler) ListBanners(c echo.Context) error {
	var banners []models.Banner
	err := h.DB.Where("is_active = ?", true).
		Order("display_order, id").
		Find(&banners).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "banners", banners)
}

func (h *ContentHandler) CreateBanner(c echo.Context) error {
	var req struct {
		Title        string `json:"title"`
		ImageURL     string `json:"image_url"`
		LinkURL      string `json:"link_url"`
		DisplayOrder int    `json:"display_order"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	banner := models.Banner{
		Title:        req.Title,
		ImageURL:     req.ImageURL,
		LinkURL:      req.LinkURL,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if err := h.DB.Create(&banner).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusCreated, "banner created", banner)
}

func (h *ContentHandler) UpdateBanner(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid banner id")
	}

	var banner models.Banner
	if err := h.DB.First(&banner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "banner not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req struct {
		Title        *string `json:"title"`
		ImageURL     *string `json:"image_url"`
		LinkURL      *string `json:"link_url"`
		DisplayOrder *int    `json:"display_order"`
		IsActive     *bool   `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Title != nil {
		banner.Title = *req.Title
	}
	if req.ImageURL != nil {
		banner.ImageURL = *req.ImageURL
	}
	if req.LinkURL != nil {
		banner.LinkURL = *req.LinkURL
	}
	if req.DisplayOrder != nil {
		banner.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&banner).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "banner updated", banner)
}

func (h *ContentHandler) DeleteBanner(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid banner id")
	}

	res := h.DB.Delete(&models.Banner{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "banner not found")
	}
	return response.Message(c, http.StatusOK, "banner deleted")
}

func (h *ContentHandler) ListCultures(c echo.Context) error {
	q := h.DB.Where("is_active = ?", true)
	if v := c.QueryParam("province"); v != "" {
		q = q.Where("province = ?", v)
	}

	var cultures []models.Culture
	if err := q.Order("name").Find(&cultures).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "cultures", cultures)
}

func (h *ContentHandler) GetCulture(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid culture id")
	}

	var culture models.Culture
	if err := h.DB.First(&culture, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "culture not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "culture", culture)
}

func (h *ContentHandler) CreateCulture(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Province    string `json:"province"`
		ImageURL    string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	culture := models.Culture{
		Name:        req.Name,
		Description: req.Description,
		Province:    req.Province,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := h.DB.Create(&culture).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusCreated, "culture created", culture)
}

func (h *ContentHandler) UpdateCulture(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid culture id")
	}

	var culture models.Culture
	if err := h.DB.First(&culture, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "culture not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Province    *string `json:"province"`
		ImageURL    *string `json:"image_url"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Name != nil {
		culture.Name = *req.Name
	}
	if req.Description != nil {
		culture.Description = *req.Description
	}
	if req.Province != nil {
		culture.Province = *req.Province
	}
	if req.ImageURL != nil {
		culture.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		culture.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&culture).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "culture updated", culture)
}

func (h *ContentHandler) DeleteCulture(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid culture id")
	}

	res := h.DB.Delete(&models.Culture{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "culture not found")
	}
	return response.Message(c, http.StatusOK, "culture deleted")
}
