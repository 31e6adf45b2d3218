package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/warodomh/marketplace/internal/events"
	"github.com/warodomh/marketplace/internal/hash"
	"github.com/warodomh/marketplace/internal/models"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *echo.Echo) {
	t.Helper()
	db := initTestDB(t)
	return &AuthHandler{DB: db, Tokens: testTokens(db), Producer: &events.Producer{}}, echo.New()
}

func TestRegister(t *testing.T) {
	h, e := newAuthHandler(t)

	body := map[string]string{
		"name":     "Somchai",
		"email":    "somchai@example.com",
		"password": "correct horse",
	}
	c, rec := newContext(t, e, http.MethodPost, "/api/v1/register", body, nil)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	require.True(t, env.IsSuccess)

	var user models.User
	require.NoError(t, h.DB.Where("email = ?", "somchai@example.com").First(&user).Error)
	require.Equal(t, models.RoleCustomer, user.Role)
	require.NotEqual(t, "correct horse", user.PasswordHash)

	// Same email again is a conflict.
	c2, _ := newContext(t, e, http.MethodPost, "/api/v1/register", body, nil)
	requireHTTPError(t, h.Register(c2), http.StatusConflict)
}

func TestRegisterValidation(t *testing.T) {
	h, e := newAuthHandler(t)

	c, _ := newContext(t, e, http.MethodPost, "/api/v1/register", map[string]string{
		"name":     "x",
		"email":    "x@example.com",
		"password": "short",
	}, nil)
	requireHTTPError(t, h.Register(c), http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	h, e := newAuthHandler(t)

	passwordHash, err := hash.HashPassword("secret-password")
	require.NoError(t, err)
	user := models.User{Name: "u", Email: "login@example.com", PasswordHash: passwordHash, Role: models.RoleCustomer, IsActive: true}
	require.NoError(t, h.DB.Create(&user).Error)

	c, rec := newContext(t, e, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    "login@example.com",
		"password": "secret-password",
	}, nil)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, data["accessToken"])
	require.NotEmpty(t, data["refreshToken"])

	cookies := rec.Result().Cookies()
	names := map[string]bool{}
	for _, ck := range cookies {
		names[ck.Name] = true
		require.True(t, ck.HttpOnly)
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])

	// The refresh token row is persisted for rotation checks.
	var count int64
	require.NoError(t, h.DB.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	t.Run("wrong password", func(t *testing.T) {
		c, _ := newContext(t, e, http.MethodPost, "/api/v1/login", map[string]string{
			"email":    "login@example.com",
			"password": "wrong",
		}, nil)
		requireHTTPError(t, h.Login(c), http.StatusUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		c, _ := newContext(t, e, http.MethodPost, "/api/v1/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "whatever",
		}, nil)
		requireHTTPError(t, h.Login(c), http.StatusUnauthorized)
	})

	t.Run("disabled account", func(t *testing.T) {
		require.NoError(t, h.DB.Model(&user).Update("is_active", false).Error)
		c, _ := newContext(t, e, http.MethodPost, "/api/v1/login", map[string]string{
			"email":    "login@example.com",
			"password": "secret-password",
		}, nil)
		requireHTTPError(t, h.Login(c), http.StatusForbidden)
	})
}

func TestRefreshRotatesToken(t *testing.T) {
	h, e := newAuthHandler(t)

	passwordHash, _ := hash.HashPassword("secret-password")
	user := models.User{Name: "u", Email: "r@example.com", PasswordHash: passwordHash, Role: models.RoleCustomer, IsActive: true}
	require.NoError(t, h.DB.Create(&user).Error)

	c, rec := newContext(t, e, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    "r@example.com",
		"password": "secret-password",
	}, nil)
	require.NoError(t, h.Login(c))

	var loginEnv struct {
		Data struct {
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginEnv))
	oldRefresh := loginEnv.Data.RefreshToken

	c2, rec2 := newContext(t, e, http.MethodPost, "/api/v1/refresh", nil, nil)
	c2.Request().AddCookie(&http.Cookie{Name: "refreshToken", Value: oldRefresh})
	require.NoError(t, h.Refresh(c2))
	require.Equal(t, http.StatusOK, rec2.Code)

	// The original token is revoked and cannot be used again.
	var stored models.RefreshToken
	require.NoError(t, h.DB.Where("token = ?", oldRefresh).First(&stored).Error)
	require.True(t, stored.Revoked)

	c3, _ := newContext(t, e, http.MethodPost, "/api/v1/refresh", nil, nil)
	c3.Request().AddCookie(&http.Cookie{Name: "refreshToken", Value: oldRefresh})
	requireHTTPError(t, h.Refresh(c3), http.StatusUnauthorized)
}

func TestChangePassword(t *testing.T) {
	h, e := newAuthHandler(t)

	passwordHash, _ := hash.HashPassword("old-password")
	user := models.User{Name: "u", Email: "cp@example.com", PasswordHash: passwordHash, Role: models.RoleCustomer, IsActive: true}
	require.NoError(t, h.DB.Create(&user).Error)

	c, _ := newContext(t, e, http.MethodPost, "/api/v1/profile/password", map[string]string{
		"current_password": "wrong",
		"new_password":     "new-password-1",
	}, &user)
	requireHTTPError(t, h.ChangePassword(c), http.StatusUnauthorized)

	c2, rec := newContext(t, e, http.MethodPost, "/api/v1/profile/password", map[string]string{
		"current_password": "old-password",
		"new_password":     "new-password-1",
	}, &user)
	require.NoError(t, h.ChangePassword(c2))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	require.NoError(t, h.DB.First(&updated, user.ID).Error)
	require.True(t, hash.CheckPassword(updated.PasswordHash, "new-password-1"))
}

func TestChangeRole(t *testing.T) {
	h, e := newAuthHandler(t)
	target := createUser(t, h.DB, "target@example.com", models.RoleCustomer)
	admin := createUser(t, h.DB, "admin@example.com", models.RoleAdmin)

	c, rec := newContext(t, e, http.MethodPost, "/api/v1/admin/users/role", map[string]any{
		"user_id": target.ID,
		"role":    models.RoleSeller,
	}, &admin)
	require.NoError(t, h.ChangeRole(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	require.NoError(t, h.DB.First(&updated, target.ID).Error)
	require.Equal(t, models.RoleSeller, updated.Role)

	c2, _ := newContext(t, e, http.MethodPost, "/api/v1/admin/users/role", map[string]any{
		"user_id": target.ID,
		"role":    "SuperUser",
	}, &admin)
	requireHTTPError(t, h.ChangeRole(c2), http.StatusBadRequest)
}
