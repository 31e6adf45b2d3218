package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/token"
)

type AddressHandler struct {
	DB *gorm.DB
}

func (h *AddressHandler) List(c echo.Context) error {
	var addresses []models.Address
	err := h.DB.Where("user_id = ?", token.UserID(c)).
		Order("is_default DESC, created_at").
		Find(&addresses).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "addresses", addresses)
}

func (h *AddressHandler) Create(c echo.Context) error {
	userID := token.UserID(c)

	var req struct {
		Label      string `json:"label"`
		Line1      string `json:"line1"`
		Line2      string `json:"line2"`
		District   string `json:"district"`
		Province   string `json:"province"`
		PostalCode string `json:"postal_code"`
		Phone      string `json:"phone"`
		IsDefault  bool   `json:"is_default"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Line1 == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "line1 is required")
	}

	// The first address becomes the default automatically.
	var count int64
	if err := h.DB.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	isDefault := req.IsDefault || count == 0

	address := models.Address{
		UserID:     userID,
		Label:      req.Label,
		Line1:      req.Line1,
		Line2:      req.Line2,
		District:   req.District,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
		IsDefault:  isDefault,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if isDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusCreated, "address created", address)
}

func (h *AddressHandler) Update(c echo.Context) error {
	address, herr := h.owned(c)
	if herr != nil {
		return herr
	}

	var req struct {
		Label      *string `json:"label"`
		Line1      *string `json:"line1"`
		Line2      *string `json:"line2"`
		District   *string `json:"district"`
		Province   *string `json:"province"`
		PostalCode *string `json:"postal_code"`
		Phone      *string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Label != nil {
		address.Label = *req.Label
	}
	if req.Line1 != nil {
		if *req.Line1 == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "line1 cannot be empty")
		}
		address.Line1 = *req.Line1
	}
	if req.Line2 != nil {
		address.Line2 = *req.Line2
	}
	if req.District != nil {
		address.District = *req.District
	}
	if req.Province != nil {
		address.Province = *req.Province
	}
	if req.PostalCode != nil {
		address.PostalCode = *req.PostalCode
	}
	if req.Phone != nil {
		address.Phone = *req.Phone
	}

	if err := h.DB.Save(address).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "address updated", address)
}

// SetDefault switches the caller's default address atomically.
func (h *AddressHandler) SetDefault(c echo.Context) error {
	address, herr := h.owned(c)
	if herr != nil {
		return herr
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("user_id = ?", address.UserID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(address).Update("is_default", true).Error
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "default address set", address)
}

func (h *AddressHandler) Delete(c echo.Context) error {
	address, herr := h.owned(c)
	if herr != nil {
		return herr
	}

	if err := h.DB.Delete(address).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Message(c, http.StatusOK, "address deleted")
}

func (h *AddressHandler) owned(c echo.Context) (*models.Address, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid address id")
	}

	var address models.Address
	if err := h.DB.First(&address, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "address not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if address.UserID != token.UserID(c) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "address belongs to another user")
	}
	return &address, nil
}
