package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email         string    `gorm:"size:254" json:"email"`
	FirstName     string    `gorm:"size:150" json:"first_name"`
	LastName      string    `gorm:"size:150" json:"last_name"`
	PasswordHash  string    `json:"-"`
	GoogleSubject *string   `gorm:"size:255;uniqueIndex" json:"-"`
	Orders        []Order   `json:"orders,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Category struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:200;not null" json:"name"`
	Slug      string     `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	ParentID  *uint      `json:"parent_id,omitempty"`
	Children  []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Products  []Product  `json:"products,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Slug        string          `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Available   bool            `gorm:"not null;index" json:"available"`
	CategoryID  uint            `gorm:"index" json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Cart is owned by exactly one of UserID or SessionID.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    *uint      `gorm:"uniqueIndex" json:"user_id,omitempty"`
	SessionID *string    `gorm:"size:64;uniqueIndex" json:"-"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Product   Product   `json:"product"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

const DefaultPaymentMethod = "COD"

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	FirstName     string          `gorm:"size:100" json:"first_name"`
	LastName      string          `gorm:"size:100" json:"last_name"`
	Email         string          `gorm:"size:254" json:"email"`
	Phone         string          `gorm:"size:32" json:"phone,omitempty"`
	Address       string          `gorm:"size:250" json:"address"`
	City          string          `gorm:"size:100" json:"city"`
	Zipcode       string          `gorm:"size:20" json:"zipcode"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	PaymentMethod string          `gorm:"size:32;not null" json:"payment_method"`
	Status        OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	Items         []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem freezes the product name and price at purchase time.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"size:200" json:"product_name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Products  []Product `gorm:"many2many:wishlist_products;" json:"products"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&User{}, &Category{}, &Product{}, &Cart{}, &CartItem{},
		&Order{}, &OrderItem{}, &Review{}, &Wishlist{},
	}
}
