package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/minhtran205/fashion-shop/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock subtracts qty from the product's stock in a single
// conditional UPDATE. The guard and the write are one statement, so two
// concurrent orders can never both pass a stale stock check.
// Returns (false, nil) when the product exists but has insufficient stock.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uint, qty uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.DB.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", productID).Count(&exists).Error; err != nil {
			return false, err
		}
		if exists == 0 {
			return false, gorm.ErrRecordNotFound
		}
		return false, nil
	}
	return true, nil
}

// IncrementStock is best-effort: a product deleted since the order was
// placed is skipped rather than failing the caller.
func (r *GormRepo) IncrementStock(ctx context.Context, productID uint, qty uint) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return res.Error
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
