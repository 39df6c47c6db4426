package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minhtran205/fashion-shop/internal/hash"
	"github.com/minhtran205/fashion-shop/internal/logging"
	auth "github.com/minhtran205/fashion-shop/internal/middleware/auth"
)

type UserHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user := auth.CurrentUser(c)
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update_profile")

	user := auth.CurrentUser(c)

	var req struct {
		Name            string `json:"name"`
		Phone           string `json:"phone"`
		Address         string `json:"address"`
		Password        string `json:"password"`
		CurrentPassword string `json:"current_password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_profile_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Address != "" {
		user.Address = req.Address
	}

	if req.Password != "" {
		if len(req.Password) < 6 {
			return echo.NewHTTPError(http.StatusBadRequest, "new password must have at least 6 characters")
		}
		if req.CurrentPassword == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "current password is required")
		}
		if !hash.CheckPassword(user.PasswordHash, req.CurrentPassword) {
			return echo.NewHTTPError(http.StatusBadRequest, "current password is incorrect")
		}
		pwHash, err := hash.HashPassword(req.Password)
		if err != nil {
			l.Error("update_profile_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		user.PasswordHash = pwHash
	}

	if err := h.DB.Save(user).Error; err != nil {
		l.Error("update_profile_error", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	token, err := SignToken(user.ID, h.JWTSecret)
	if err != nil {
		l.Error("update_profile_error", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("update_profile_success")
	return c.JSON(http.StatusOK, userResponse(user, token))
}
