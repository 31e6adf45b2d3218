package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/storage"
	"github.com/warodomh/marketplace/internal/token"
)

type SellerHandler struct {
	DB      *gorm.DB
	Storage *storage.Storage
}

// Onboard creates a seller profile for the authenticated user and
// promotes them to the Seller role.
func (h *SellerHandler) Onboard(c echo.Context) error {
	userID := token.UserID(c)

	var req struct {
		ShopName        string `json:"shop_name"`
		ShopDescription string `json:"shop_description"`
		PhoneNumber     string `json:"phone_number"`
		Address         string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ShopName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "shop name is required")
	}

	var count int64
	if err := h.DB.Model(&models.Seller{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "seller profile already exists")
	}

	seller := models.Seller{
		UserID:          userID,
		ShopName:        req.ShopName,
		ShopDescription: req.ShopDescription,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		IsActive:        true,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&seller).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("role", models.RoleSeller).Error
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusCreated, "seller profile created", seller)
}

func (h *SellerHandler) List(c echo.Context) error {
	var sellers []models.Seller
	if err := h.DB.Where("is_active = ?", true).Order("shop_name").Find(&sellers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "sellers", sellers)
}

func (h *SellerHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid seller id")
	}

	var seller models.Seller
	if err := h.DB.First(&seller, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "seller not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "seller", seller)
}

func (h *SellerHandler) MyProfile(c echo.Context) error {
	seller, err := sellerOf(h.DB, c)
	if err != nil {
		return err
	}
	return response.Data(c, http.StatusOK, "seller profile", seller)
}

func (h *SellerHandler) Update(c echo.Context) error {
	seller, err := sellerOf(h.DB, c)
	if err != nil {
		return err
	}

	var req struct {
		ShopName        *string `json:"shop_name"`
		ShopDescription *string `json:"shop_description"`
		PhoneNumber     *string `json:"phone_number"`
		Address         *string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.ShopName != nil {
		if *req.ShopName == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "shop name cannot be empty")
		}
		seller.ShopName = *req.ShopName
	}
	if req.ShopDescription != nil {
		seller.ShopDescription = *req.ShopDescription
	}
	if req.PhoneNumber != nil {
		seller.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		seller.Address = *req.Address
	}

	if err := h.DB.Save(seller).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "seller profile updated", seller)
}

// uploadTargets maps the upload kind in the URL onto the seller column it
// updates.
var uploadTargets = map[string]string{
	"logo":   "logo_url",
	"shop":   "shop_image_url",
	"qrcode": "qr_code_url",
}

// UploadImage stores a shop asset (logo, shop photo or payment QR) and
// records its URL on the profile.
func (h *SellerHandler) UploadImage(c echo.Context) error {
	seller, err := sellerOf(h.DB, c)
	if err != nil {
		return err
	}

	kind := c.Param("kind")
	column, ok := uploadTargets[kind]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown upload kind")
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

	result, err := h.Storage.Save("sellers", kind, file.Filename, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var previous string
	switch kind {
	case "logo":
		previous = seller.LogoURL
	case "shop":
		previous = seller.ShopImageURL
	case "qrcode":
		previous = seller.QRCodeURL
	}
	if previous != "" {
		if err := h.Storage.DeleteByURL(previous); err != nil {
			c.Logger().Warnf("remove old seller image: %v", err)
		}
	}

	if err := h.DB.Model(seller).Update(column, result.URL).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "image uploaded", result)
}

// Revenue summarizes the caller's settlement rows.
func (h *SellerHandler) Revenue(c echo.Context) error {
	seller, err := sellerOf(h.DB, c)
	if err != nil {
		return err
	}

	var rows []models.SellerRevenue
	if err := h.DB.Where("seller_id = ?", seller.ID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var gross, commission, net, pending float64
	for _, r := range rows {
		gross += r.GrossAmount
		commission += r.CommissionAmount
		net += r.NetAmount
		if r.Status == models.SettlementPending {
			pending += r.NetAmount
		}
	}

	return response.Data(c, http.StatusOK, "revenue", map[string]any{
		"rows":             rows,
		"gross_total":      gross,
		"commission_total": commission,
		"net_total":        net,
		"pending_total":    pending,
	})
}

// Verify marks a seller as verified. Admin only.
func (h *SellerHandler) Verify(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid seller id")
	}

	res := h.DB.Model(&models.Seller{}).Where("id = ?", id).Update("is_verified", true)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "seller not found")
	}
	return response.Message(c, http.StatusOK, "seller verified")
}
