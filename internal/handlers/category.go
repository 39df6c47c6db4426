package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minhtran205/fashion-shop/internal/logging"
	"github.com/minhtran205/fashion-shop/internal/models"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Order("id ASC").Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.ParentID != nil {
		var parent models.Category
		if err := h.DB.First(&parent, *req.ParentID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "parent category not found")
		}
	}

	category := models.Category{Name: req.Name, ParentID: req.ParentID}
	if err := h.DB.Create(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req struct {
		Name     *string `json:"name"`
		ParentID *uint   `json:"parent_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "name cannot be empty")
		}
		category.Name = *req.Name
	}
	if req.ParentID != nil {
		if *req.ParentID == category.ID {
			return echo.NewHTTPError(http.StatusBadRequest, "category cannot be its own parent")
		}
		var parent models.Category
		if err := h.DB.First(&parent, *req.ParentID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "parent category not found")
		}
		category.ParentID = req.ParentID
	}

	if err := h.DB.Save(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory refuses to delete a category that products or child
// categories still reference, so the catalog never holds dangling links.
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category_delete")

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var products int64
	if err := h.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if products > 0 {
		return echo.NewHTTPError(http.StatusConflict, "category still has products")
	}

	var children int64
	if err := h.DB.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if children > 0 {
		return echo.NewHTTPError(http.StatusConflict, "category still has subcategories")
	}

	res := h.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		l.Error("category_delete_failed", "status", 500, "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}

	l.Info("category_delete_success", "categoryID", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}
