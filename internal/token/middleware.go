package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/models"
)

type Service struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func (s *Service) Rotate(rawToken string) (string, string, error) {
	newAccess, newRefresh, _, err := s.rotate(rawToken)
	return newAccess, newRefresh, err
}

// rotate additionally hands back the validated refresh claims so callers
// do not have to parse the freshly signed token again.
func (s *Service) rotate(rawToken string) (string, string, jwt.MapClaims, error) {
	claims, err := ValidateRefresh(rawToken, s.RefreshSecret, s.DB)
	if err != nil {
		return "", "", nil, err
	}

	userID := uint(claims["sub"].(float64))
	role := claims["role"].(string)

	newAccess, err := SignAccessToken(userID, role, s.JWTSecret)
	if err != nil {
		return "", "", nil, err
	}
	newRefresh, err := SignRefreshToken(userID, role, s.RefreshSecret)
	if err != nil {
		return "", "", nil, err
	}
	if err := RevokeRefresh(s.DB, rawToken); err != nil {
		return "", "", nil, err
	}
	if err := SaveRefreshToken(s.DB, newRefresh, userID, role); err != nil {
		return "", "", nil, err
	}
	return newAccess, newRefresh, claims, nil
}

// AutoRefresh authenticates from the access cookie, falling back to a
// refresh rotation when the access token has merely expired.
func (s *Service) AutoRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		asCookie, err := c.Cookie("accessToken")
		if err == nil {
			tk, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
				return s.JWTSecret, nil
			})
			if err == nil && tk.Valid {
				setUserContext(c, tk.Claims.(jwt.MapClaims))
				return next(c)
			}
			if !isExpired(err) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
		}

		rfCookie, err := c.Cookie("refreshToken")
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}
		newAccess, newRefresh, claims, err := s.rotate(rfCookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token: "+err.Error())
		}

		c.SetCookie(NewCookie("accessToken", newAccess, time.Now().Add(AccessTTL)))
		c.SetCookie(NewCookie("refreshToken", newRefresh, time.Now().Add(RefreshTTL)))

		setUserContext(c, claims)
		return next(c)
	}
}

// AdminOnly wraps AutoRefresh and additionally requires the Admin role.
func (s *Service) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return s.AutoRefresh(func(c echo.Context) error {
		if Role(c) != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}

func isExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	c.Set("userID", uint(claims["sub"].(float64)))
	c.Set("role", claims["role"].(string))
}

// UserID returns the authenticated user id placed by the middleware.
func UserID(c echo.Context) uint {
	if v, ok := c.Get("userID").(uint); ok {
		return v
	}
	return 0
}

func Role(c echo.Context) string {
	if v, ok := c.Get("role").(string); ok {
		return v
	}
	return ""
}

func NewCookie(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
