package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/geo"
	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/storage"
)

type LocationHandler struct {
	DB      *gorm.DB
	Storage *storage.Storage
}

// defaultNearbyRadiusKm bounds the nearby search when the client sends
// no radius.
const defaultNearbyRadiusKm = 10.0

func (h *LocationHandler) List(c echo.Context) error {
	q := h.DB.Where("is_active = ?", true)
	if v := c.QueryParam("type"); v != "" {
		q = q.Where("type = ?", v)
	}
	if v := c.QueryParam("seller_id"); v != "" {
		q = q.Where("seller_id = ?", v)
	}

	var locations []models.Location
	if err := q.Order("name").Find(&locations).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "locations", locations)
}

func (h *LocationHandler) Get(c echo.Context) error {
	var location models.Location
	err := h.DB.Where("location_id = ?", c.Param("locationID")).First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "location not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "location", location)
}

type nearbyLocation struct {
	models.Location
	DistanceKm float64 `json:"distance_km"`
}

// Nearby returns active locations within the radius of the given point,
// closest first. The filter runs in process; the location table is small.
func (h *LocationHandler) Nearby(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lat query parameter is required")
	}
	lon, err := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lon query parameter is required")
	}
	radius := defaultNearbyRadiusKm
	if v := c.QueryParam("radius"); v != "" {
		radius, err = strconv.ParseFloat(v, 64)
		if err != nil || radius <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "radius must be a positive number")
		}
	}

	var locations []models.Location
	if err := h.DB.Where("is_active = ?", true).Find(&locations).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	nearby := make([]nearbyLocation, 0)
	for _, loc := range locations {
		d := geo.Distance(lat, lon, loc.Latitude, loc.Longitude)
		if d <= radius {
			nearby = append(nearby, nearbyLocation{Location: loc, DistanceKm: d})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })

	return response.Data(c, http.StatusOK, "nearby locations", nearby)
}

func (h *LocationHandler) Create(c echo.Context) error {
	var req struct {
		SellerID    uint    `json:"seller_id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Type        string  `json:"type"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Address     string  `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return echo.NewHTTPError(http.StatusBadRequest, "coordinates out of range")
	}
	if req.Type == "" {
		req.Type = "Store"
	}

	location := models.Location{
		SellerID:    req.SellerID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		IsActive:    true,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		id, err := nextLocationID(tx)
		if err != nil {
			return err
		}
		location.LocationID = id
		return tx.Create(&location).Error
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusCreated, "location created", location)
}

func (h *LocationHandler) Update(c echo.Context) error {
	var location models.Location
	err := h.DB.Where("location_id = ?", c.Param("locationID")).First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "location not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Type        *string  `json:"type"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		Address     *string  `json:"address"`
		IsActive    *bool    `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Description != nil {
		location.Description = *req.Description
	}
	if req.Type != nil {
		location.Type = *req.Type
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			return echo.NewHTTPError(http.StatusBadRequest, "latitude out of range")
		}
		location.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		if *req.Longitude < -180 || *req.Longitude > 180 {
			return echo.NewHTTPError(http.StatusBadRequest, "longitude out of range")
		}
		location.Longitude = *req.Longitude
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.IsActive != nil {
		location.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&location).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "location updated", location)
}

func (h *LocationHandler) Delete(c echo.Context) error {
	res := h.DB.Model(&models.Location{}).
		Where("location_id = ?", c.Param("locationID")).
		Update("is_active", false)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "location not found")
	}
	return response.Message(c, http.StatusOK, "location deleted")
}

func (h *LocationHandler) UploadImage(c echo.Context) error {
	var location models.Location
	err := h.DB.Where("location_id = ?", c.Param("locationID")).First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "location not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
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

	result, err := h.Storage.Save("locations", "location", file.Filename, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if location.ImageURL != "" {
		if err := h.Storage.DeleteByURL(location.ImageURL); err != nil {
			c.Logger().Warnf("remove old location image: %v", err)
		}
	}
	if err := h.DB.Model(&location).Update("image_url", result.URL).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "image uploaded", result)
}

// nextLocationID allocates sequential LO-NNNN identifiers from the
// highest one present.
func nextLocationID(tx *gorm.DB) (string, error) {
	var last models.Location
	err := tx.Order("location_id DESC").First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "LO-0001", nil
		}
		return "", err
	}

	var n int
	if _, err := fmt.Sscanf(last.LocationID, "LO-%04d", &n); err != nil {
		return "", fmt.Errorf("malformed location id %q: %w", last.LocationID, err)
	}
	return fmt.Sprintf("LO-%04d", n+1), nil
}
