package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	Status       string    `gorm:"not null;default:active"  json:"status"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsBlocked() bool { return u.Status == UserStatusBlocked }

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	ParentID  *uint     `gorm:"index"                    json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StringList is stored as a JSON-encoded TEXT column so the same model
// works on postgres and on the sqlite test database.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

type Product struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"not null"                 json:"name"`
	Description string     `json:"description"`
	Price       float64    `gorm:"not null;check:price >= 0" json:"price"`
	Image       string     `json:"image"`
	CategoryID  uint       `gorm:"index;not null"           json:"category_id"`
	Category    *Category  `json:"category,omitempty"`
	Stock       uint       `gorm:"not null;default:0"       json:"stock"`
	Sizes       StringList `gorm:"type:text"                json:"sizes"`
	Colors      StringList `gorm:"type:text"                json:"colors"`
	Rating      float64    `gorm:"not null;default:0"       json:"rating"`
	NumReviews  uint       `gorm:"not null;default:0"       json:"num_reviews"`
	Reviews     []Review   `gorm:"foreignKey:ProductID"     json:"reviews,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"             json:"id"`
	ProductID uint      `gorm:"index:idx_review_user,unique;not null" json:"product_id"`
	UserID    uint      `gorm:"index:idx_review_user,unique;not null" json:"user_id"`
	Name      string    `gorm:"not null"                             json:"name"`
	Rating    uint      `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string    `gorm:"not null"                             json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"                json:"id"`
	UserID    uint     `gorm:"index:idx_cart_user_product,unique;not null" json:"user_id"`
	ProductID uint     `gorm:"index:idx_cart_user_product,unique;not null" json:"product_id"`
	Quantity  uint     `gorm:"not null;default:1;check:quantity > 0"   json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

type Order struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint        `gorm:"index;not null"           json:"user_id"`
	User       *User       `json:"user,omitempty"`
	Items      []OrderItem `gorm:"foreignKey:OrderID"       json:"items"`
	Address    string      `gorm:"not null"                 json:"address"`
	Phone      string      `gorm:"not null"                 json:"phone"`
	TotalPrice float64     `gorm:"not null;default:0"       json:"total_price"`
	Status     OrderStatus `gorm:"not null;default:pending" json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrderItem keeps a point-in-time copy of the unit price so later product
// price edits never change historical orders.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint     `gorm:"index;not null"           json:"order_id"`
	ProductID uint     `gorm:"not null"                 json:"product_id"`
	Product   *Product `json:"product,omitempty"`
	Quantity  uint     `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice float64  `gorm:"not null"                 json:"unit_price"`
	Size      string   `json:"size,omitempty"`
	Color     string   `json:"color,omitempty"`
}

// All lists every model for automigration.
func All() []interface{} {
	return []interface{}{
		&User{}, &Category{}, &Product{}, &Review{},
		&CartItem{}, &Order{}, &OrderItem{},
	}
}
