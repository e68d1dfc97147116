package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/judyrop/handmade-store/cart"
	"github.com/judyrop/handmade-store/models"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("unknown order status")
)

// ShippingDetails is the checkout form.
type ShippingDetails struct {
	FirstName     string `json:"first_name" form:"first_name" binding:"required,max=100"`
	LastName      string `json:"last_name" form:"last_name" binding:"required,max=100"`
	Email         string `json:"email" form:"email" binding:"required,email,max=254"`
	Phone         string `json:"phone" form:"phone" binding:"omitempty,max=32"`
	Address       string `json:"address" form:"address" binding:"required,max=250"`
	City          string `json:"city" form:"city" binding:"required,max=100"`
	Zipcode       string `json:"zipcode" form:"zipcode" binding:"required,max=20"`
	PaymentMethod string `json:"payment_method" form:"payment_method" binding:"omitempty,max=32"`
}

type Service struct {
	db    *gorm.DB
	carts *cart.Service
}

func NewService(db *gorm.DB, carts *cart.Service) *Service {
	return &Service{db: db, carts: carts}
}

// Preview returns the user's cart, refusing an empty one.
func (s *Service) Preview(ctx context.Context, userID uint) (*models.Cart, error) {
	c, err := s.carts.Resolve(ctx, cart.Identity{UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}
	return c, nil
}

// Place turns the user's cart into an order and empties the cart.
// Prices and names are copied from the products as they are now.
func (s *Service) Place(ctx context.Context, userID uint, details ShippingDetails) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithDB(tx)
		c, err := carts.Resolve(ctx, cart.Identity{UserID: userID})
		if err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return ErrEmptyCart
		}

		payment := strings.TrimSpace(details.PaymentMethod)
		if payment == "" {
			payment = models.DefaultPaymentMethod
		}

		order = models.Order{
			UserID:        userID,
			FirstName:     details.FirstName,
			LastName:      details.LastName,
			Email:         details.Email,
			Phone:         details.Phone,
			Address:       details.Address,
			City:          details.City,
			Zipcode:       details.Zipcode,
			TotalPrice:    c.TotalPrice(),
			PaymentMethod: payment,
			Status:        models.OrderStatusPending,
		}
		for _, item := range c.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Price:       item.Product.Price,
				Quantity:    item.Quantity,
			})
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return carts.Clear(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetStatus moves an order to status.
func (s *Service) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	db := s.db.WithContext(ctx)
	var order models.Order
	err := db.Preload("Items").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := db.Model(&order).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update order %d status: %w", order.ID, err)
	}
	order.Status = status
	return &order, nil
}
