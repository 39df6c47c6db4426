package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	auth "github.com/minhtran205/fashion-shop/internal/middleware/auth"
	"github.com/minhtran205/fashion-shop/internal/models"
	"github.com/minhtran205/fashion-shop/internal/mykafka"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	user := auth.CurrentUser(c)

	items, err := h.loadCart(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// AddToCart merges quantity into an existing line item so the cart never
// holds two lines for the same product.
func (h *CartHandler) AddToCart(c echo.Context) error {
	user := auth.CurrentUser(c)

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var item models.CartItem
	tx := h.DB.Where("user_id = ? AND product_id = ?", user.ID, req.ProductID).First(&item)
	switch {
	case tx.Error == nil:
		item.Quantity += req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	case errors.Is(tx.Error, gorm.ErrRecordNotFound):
		item = models.CartItem{
			UserID:    user.ID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := h.DB.Create(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, user.ID, map[string]any{
		"type":      "cart_item_added",
		"userID":    user.ID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})

	items, err := h.loadCart(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateCartItem sets an absolute quantity; zero or below removes the line.
func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	user := auth.CurrentUser(c)

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var item models.CartItem
	if err := h.DB.Where("user_id = ? AND product_id = ?", user.ID, req.ProductID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not in cart")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if req.Quantity <= 0 {
		if err := h.DB.Delete(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		h.publish(c, user.ID, map[string]any{
			"type":      "cart_item_removed",
			"userID":    user.ID,
			"productID": req.ProductID,
		})
	} else {
		item.Quantity = uint(req.Quantity)
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		h.publish(c, user.ID, map[string]any{
			"type":      "cart_item_updated",
			"userID":    user.ID,
			"productID": req.ProductID,
			"quantity":  item.Quantity,
		})
	}

	items, err := h.loadCart(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	user := auth.CurrentUser(c)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	res := h.DB.Where("user_id = ? AND product_id = ?", user.ID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "product not in cart")
	}

	h.publish(c, user.ID, map[string]any{
		"type":      "cart_item_removed",
		"userID":    user.ID,
		"productID": productID,
	})

	items, err := h.loadCart(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *CartHandler) loadCart(userID uint) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	err := h.DB.Preload("Product").Where("user_id = ?", userID).Order("id ASC").Find(&items).Error
	return items, err
}
