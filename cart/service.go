package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/judyrop/handmade-store/models"
)

var (
	ErrNoIdentity      = errors.New("cart needs a user or a session")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidAction   = errors.New("action must be increase or decrease")
)

type Action string

const (
	Increase Action = "increase"
	Decrease Action = "decrease"
)

// Identity selects whose cart to use. UserID wins when both are set.
type Identity struct {
	UserID    uint
	SessionID string
}

func (id Identity) valid() bool {
	return id.UserID != 0 || id.SessionID != ""
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithDB returns a Service bound to db, typically a transaction.
func (s *Service) WithDB(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Resolve looks up the cart for id and creates it on first access.
func (s *Service) Resolve(ctx context.Context, id Identity) (*models.Cart, error) {
	if !id.valid() {
		return nil, ErrNoIdentity
	}

	cart, err := s.find(ctx, id)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &models.Cart{}
	if id.UserID != 0 {
		uid := id.UserID
		cart.UserID = &uid
	} else {
		sid := id.SessionID
		cart.SessionID = &sid
	}
	createErr := s.db.WithContext(ctx).Create(cart).Error
	if createErr == nil {
		cart.Items = []models.CartItem{}
		return cart, nil
	}

	// lost a concurrent create: use the winner's cart
	if errors.Is(createErr, gorm.ErrDuplicatedKey) {
		return s.find(ctx, id)
	}
	return nil, fmt.Errorf("create cart: %w", createErr)
}

func (s *Service) find(ctx context.Context, id Identity) (*models.Cart, error) {
	q := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Product")
	if id.UserID != 0 {
		q = q.Where("user_id = ?", id.UserID)
	} else {
		q = q.Where("session_id = ? AND user_id IS NULL", id.SessionID)
	}

	var cart models.Cart
	if err := q.First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Reload refreshes cart.Items from the database.
func (s *Service) Reload(ctx context.Context, cart *models.Cart) error {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cart.ID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return fmt.Errorf("load cart %d: %w", cart.ID, err)
	}
	cart.Items = items
	return nil
}

// Add puts one unit of productID into the cart.
func (s *Service) Add(ctx context.Context, cart *models.Cart, productID uint) (*models.CartItem, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("id = ? AND available = ?", productID, true).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	item, err := s.addQuantity(ctx, cart.ID, product.ID, 1)
	if err != nil {
		return nil, err
	}
	item.Product = product
	return item, nil
}

func (s *Service) addQuantity(ctx context.Context, cartID, productID uint, qty int) (*models.CartItem, error) {
	db := s.db.WithContext(ctx)

	var item models.CartItem
	err := db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}
		err = db.Create(&item).Error
		if err == nil {
			return &item, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create cart item: %w", err)
		}
		if err = db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	err = db.Model(&item).Update("quantity", gorm.Expr("quantity + ?", qty)).Error
	if err != nil {
		return nil, fmt.Errorf("increment cart item %d: %w", item.ID, err)
	}
	if err := db.First(&item, item.ID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Remove deletes a line of the cart.
func (s *Service) Remove(ctx context.Context, cart *models.Cart, itemID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cart.ID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("delete cart item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Adjust moves a line up or down by one unit and returns the new quantity.
// A line that drops to zero is deleted.
func (s *Service) Adjust(ctx context.Context, cart *models.Cart, itemID uint, action Action) (int, error) {
	var delta int
	switch action {
	case Increase:
		delta = 1
	case Decrease:
		delta = -1
	default:
		return 0, ErrInvalidAction
	}

	db := s.db.WithContext(ctx)
	var item models.CartItem
	err := db.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrItemNotFound
	}
	if err != nil {
		return 0, err
	}

	item.Quantity += delta
	if item.Quantity <= 0 {
		if err := db.Delete(&item).Error; err != nil {
			return 0, fmt.Errorf("delete cart item %d: %w", item.ID, err)
		}
		return 0, nil
	}
	if err := db.Model(&item).Update("quantity", item.Quantity).Error; err != nil {
		return 0, fmt.Errorf("update cart item %d: %w", item.ID, err)
	}
	return item.Quantity, nil
}

// Clear deletes every line of the cart.
func (s *Service) Clear(ctx context.Context, cart *models.Cart) error {
	if err := s.db.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart %d: %w", cart.ID, err)
	}
	cart.Items = []models.CartItem{}
	return nil
}

// Merge moves the guest cart of sessionID into the cart of userID.
func (s *Service) Merge(ctx context.Context, sessionID string, userID uint) error {
	if sessionID == "" || userID == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txs := s.WithDB(tx)
		guest, err := txs.find(ctx, Identity{SessionID: sessionID})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if len(guest.Items) > 0 {
			owned, err := txs.Resolve(ctx, Identity{UserID: userID})
			if err != nil {
				return err
			}
			for _, item := range guest.Items {
				if _, err := txs.addQuantity(ctx, owned.ID, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := tx.Where("cart_id = ?", guest.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, guest.ID).Error
	})
}
