package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/events"
	"github.com/warodomh/marketplace/internal/hash"
	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.Service
	Producer *events.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and a password of at least 8 characters are required")
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		Role:         models.RoleCustomer,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, events.TopicUserEvents, "user", map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
	})

	return response.Data(c, http.StatusCreated, "registered", user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !user.IsActive {
		return echo.NewHTTPError(http.StatusForbidden, "account is disabled")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	access, err := token.SignAccessToken(user.ID, user.Role, h.Tokens.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	refresh, err := token.SignRefreshToken(user.ID, user.Role, h.Tokens.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := token.SaveRefreshToken(h.DB, refresh, user.ID, user.Role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.SetCookie(token.NewCookie("accessToken", access, time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.NewCookie("refreshToken", refresh, time.Now().Add(token.RefreshTTL)))

	publish(c, h.Producer, events.TopicUserEvents, "user", map[string]any{
		"type":   "user_login",
		"userID": user.ID,
	})

	return response.Data(c, http.StatusOK, "logged in", map[string]any{
		"user":         user,
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie("refreshToken")
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	access, refresh, err := h.Tokens.Rotate(cookie.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	c.SetCookie(token.NewCookie("accessToken", access, time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.NewCookie("refreshToken", refresh, time.Now().Add(token.RefreshTTL)))

	return response.Data(c, http.StatusOK, "token refreshed", map[string]any{
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		_ = token.RevokeRefresh(h.DB, cookie.Value)
	}

	c.SetCookie(token.NewCookie("accessToken", "", time.Unix(0, 0)))
	c.SetCookie(token.NewCookie("refreshToken", "", time.Unix(0, 0)))

	return response.Message(c, http.StatusOK, "logged out")
}

func (h *AuthHandler) Profile(c echo.Context) error {
	var user models.User
	if err := h.DB.First(&user, token.UserID(c)).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return response.Data(c, http.StatusOK, "profile", user)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req struct {
		Name      string `json:"name"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		ImageURL  string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.DB.First(&user, token.UserID(c)).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Phone = req.Phone
	if req.ImageURL != "" {
		user.ImageURL = req.ImageURL
	}
	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Data(c, http.StatusOK, "profile updated", user)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.NewPassword) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "new password must be at least 8 characters")
	}

	var user models.User
	if err := h.DB.First(&user, token.UserID(c)).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if !hash.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return echo.NewHTTPError(http.StatusUnauthorized, "current password is incorrect")
	}

	passwordHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Model(&user).Update("password_hash", passwordHash).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return response.Message(c, http.StatusOK, "password changed")
}

// ChangeRole lets an admin promote or demote a user. Role changes do not
// revoke already issued refresh tokens; they pick up the new role on next
// login.
func (h *AuthHandler) ChangeRole(c echo.Context) error {
	var req struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	switch req.Role {
	case models.RoleAdmin, models.RoleSeller, models.RoleCustomer:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	res := h.DB.Model(&models.User{}).Where("id = ?", req.UserID).Update("role", req.Role)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return response.Message(c, http.StatusOK, "role updated")
}
