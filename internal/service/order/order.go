package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/minhtran205/fashion-shop/internal/models"
	"github.com/minhtran205/fashion-shop/internal/repo"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrInsufficientStock = errors.New("insufficient stock") // 409
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrIllegalTransition = errors.New("illegal transition") // 400
)

type Service struct {
	DB   *gorm.DB
	Repo *repo.GormRepo
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Repo: repo.New(db)}
}

type CreateItem struct {
	ProductID uint    `json:"product_id"`
	Quantity  uint    `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}

type CreateRequest struct {
	Items   []CreateItem `json:"items"`
	Total   float64      `json:"total"`
	Address string       `json:"address"`
	Phone   string       `json:"phone"`
}

// CreateOrder validates the request, then runs the whole checkout in one
// transaction: every line item's stock is taken through a conditional
// decrement, the order is written with status pending and the cart is
// cleared. Any per-item failure rolls the entire checkout back, so stock is
// never left partially consumed by a rejected order.
func (s *Service) CreateOrder(ctx context.Context, userID uint, req CreateRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	if req.Address == "" || req.Phone == "" {
		return nil, fmt.Errorf("%w: address and phone are required", ErrValidation)
	}
	for _, item := range req.Items {
		if item.ProductID == 0 {
			return nil, fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if item.Quantity == 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
		if item.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: unit_price must be >= 0", ErrValidation)
		}
	}

	var order *models.Order
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.Repo.WithTx(tx)

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			ok, err := r.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", ErrNotFound, item.ProductID)
				}
				return err
			}
			if !ok {
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, item.ProductID)
			}
			items = append(items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Size:      item.Size,
				Color:     item.Color,
			})
		}

		created, err := r.CreateOrder(ctx, &models.Order{
			UserID:     userID,
			Items:      items,
			Address:    req.Address,
			Phone:      req.Phone,
			TotalPrice: req.Total,
			Status:     models.OrderStatusPending,
		})
		if err != nil {
			return err
		}

		if err := r.ClearCart(ctx, userID); err != nil {
			return err
		}

		order = created
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

// CancelOrder is permitted for the order's owner or an admin, and only while
// the order is still pending. Stock restore and the status flip commit
// together; a product deleted in the meantime is skipped, never failing the
// cancellation.
func (s *Service) CancelOrder(ctx context.Context, orderID uint, actor *models.User) (*models.Order, error) {
	var order *models.Order
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.Repo.WithTx(tx)

		found, err := r.GetOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}

		if found.UserID != actor.ID && !actor.IsAdmin() {
			return fmt.Errorf("%w: not your order", ErrForbidden)
		}
		if found.Status != models.OrderStatusPending {
			return fmt.Errorf("%w: cannot cancel a %s order", ErrIllegalTransition, found.Status)
		}

		for _, item := range found.Items {
			if err := r.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		found.Status = models.OrderStatusCancelled
		if _, err := r.SaveOrder(ctx, found); err != nil {
			return err
		}

		order = found
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

// UpdateStatus applies an admin-requested transition after checking it
// against the transition table. A cancellation target goes through
// CancelOrder so the stock restore happens exactly once.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status string, actor *models.User) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if next == models.OrderStatusCancelled {
		return s.CancelOrder(ctx, orderID, actor)
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, next)
	}

	order.Status = next
	return s.Repo.SaveOrder(ctx, order)
}

func (s *Service) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) ListMyOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}

func (s *Service) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx)
}
