package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minhtran205/fashion-shop/internal/models"
)

const userContextKey = "auth_user"

// RequireLogin extracts the bearer token, validates it and resolves the user
// from the database, so a deleted or blocked account is rejected even while
// its token is still within its lifetime. The resolved user is stored in the
// echo context for the handler chain.
func RequireLogin(db *gorm.DB, jwtSecret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return jwtSecret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			subRaw, ok := claims["sub"].(float64)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
			}

			var user models.User
			if err := db.First(&user, uint(subRaw)).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "user no longer exists")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}
			if user.IsBlocked() {
				return echo.NewHTTPError(http.StatusUnauthorized, "account is blocked")
			}

			SetCurrentUser(c, &user)
			return next(c)
		}
	}
}

// SetCurrentUser stores the resolved identity for the rest of the handler
// chain.
func SetCurrentUser(c echo.Context, u *models.User) {
	c.Set(userContextKey, u)
}

// CurrentUser returns the user resolved by RequireLogin, or nil outside the
// protected chain.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
