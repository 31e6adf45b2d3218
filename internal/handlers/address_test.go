package handlers

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/warodomh/marketplace/internal/models"
)

func TestAddressFirstBecomesDefault(t *testing.T) {
	db := initTestDB(t)
	h := &AddressHandler{DB: db}
	e := echo.New()
	user := createUser(t, db, "u@example.com", models.RoleCustomer)

	c, rec := newContext(t, e, http.MethodPost, "/api/v1/addresses", map[string]any{
		"label": "home", "line1": "1 Soi Sukhumvit", "province": "Bangkok",
	}, &user)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var first models.Address
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&first).Error)
	require.True(t, first.IsDefault)

	// A second non-default address leaves the first as default.
	c2, _ := newContext(t, e, http.MethodPost, "/api/v1/addresses", map[string]any{
		"label": "work", "line1": "99 Silom Road", "province": "Bangkok",
	}, &user)
	require.NoError(t, h.Create(c2))

	var defaults int64
	require.NoError(t, db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", user.ID, true).Count(&defaults).Error)
	require.Equal(t, int64(1), defaults)
}

func TestAddressSetDefaultSwitches(t *testing.T) {
	db := initTestDB(t)
	h := &AddressHandler{DB: db}
	e := echo.New()
	user := createUser(t, db, "u@example.com", models.RoleCustomer)

	home := models.Address{UserID: user.ID, Label: "home", Line1: "1 Soi Sukhumvit", IsDefault: true}
	work := models.Address{UserID: user.ID, Label: "work", Line1: "99 Silom Road"}
	require.NoError(t, db.Create(&home).Error)
	require.NoError(t, db.Create(&work).Error)

	c, rec := newContext(t, e, http.MethodPost, "/", nil, &user)
	c.SetParamNames("id")
	c.SetParamValues(itoa(work.ID))
	require.NoError(t, h.SetDefault(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reloadedHome, reloadedWork models.Address
	require.NoError(t, db.First(&reloadedHome, home.ID).Error)
	require.NoError(t, db.First(&reloadedWork, work.ID).Error)
	require.False(t, reloadedHome.IsDefault)
	require.True(t, reloadedWork.IsDefault)
}

func TestAddressOwnership(t *testing.T) {
	db := initTestDB(t)
	h := &AddressHandler{DB: db}
	e := echo.New()
	owner := createUser(t, db, "owner@example.com", models.RoleCustomer)
	other := createUser(t, db, "other@example.com", models.RoleCustomer)

	address := models.Address{UserID: owner.ID, Line1: "1 Soi Sukhumvit"}
	require.NoError(t, db.Create(&address).Error)

	c, _ := newContext(t, e, http.MethodDelete, "/", nil, &other)
	c.SetParamNames("id")
	c.SetParamValues(itoa(address.ID))
	requireHTTPError(t, h.Delete(c), http.StatusForbidden)

	c2, _ := newContext(t, e, http.MethodDelete, "/", nil, &owner)
	c2.SetParamNames("id")
	c2.SetParamValues(itoa(address.ID))
	require.NoError(t, h.Delete(c2))

	var count int64
	require.NoError(t, db.Model(&models.Address{}).Where("user_id = ?", owner.ID).Count(&count).Error)
	require.Zero(t, count)
}
