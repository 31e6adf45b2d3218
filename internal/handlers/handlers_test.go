package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warodomh/marketplace/internal/config"
	"github.com/warodomh/marketplace/internal/models"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/token"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

// newContext builds an echo context carrying an optional JSON body and the
// identity the auth middleware would have set.
func newContext(t *testing.T, e *echo.Echo, method, path string, body any, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set("userID", user.ID)
		c.Set("role", user.Role)
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
}

func createUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Name: "u", Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createSeller(t *testing.T, db *gorm.DB, email string) (models.User, models.Seller) {
	t.Helper()
	user := createUser(t, db, email, models.RoleSeller)
	seller := models.Seller{UserID: user.ID, ShopName: "shop", IsActive: true}
	require.NoError(t, db.Create(&seller).Error)
	return user, seller
}

func createProduct(t *testing.T, db *gorm.DB, sellerID uint, name string, price float64, stock int) models.Product {
	t.Helper()
	product := models.Product{SellerID: sellerID, Name: name, Price: price, Stock: stock, IsActive: true}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func testTokens(db *gorm.DB) *token.Service {
	return &token.Service{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}
