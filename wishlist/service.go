package wishlist

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/judyrop/handmade-store/models"
)

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get returns the user's wishlist with its products, creating it on first access.
func (s *Service) Get(ctx context.Context, userID uint) (*models.Wishlist, error) {
	db := s.db.WithContext(ctx)

	var list models.Wishlist
	err := db.Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("products.id") }).
		Where("user_id = ?", userID).
		First(&list).Error
	if err == nil {
		return &list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	list = models.Wishlist{UserID: userID, Products: []models.Product{}}
	err = db.Create(&list).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.Get(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("create wishlist: %w", err)
	}
	return &list, nil
}

// Toggle adds productID when absent and removes it when present.
// It returns whether the product is in the wishlist afterwards.
func (s *Service) Toggle(ctx context.Context, userID, productID uint) (bool, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrProductNotFound
	}
	if err != nil {
		return false, err
	}

	list, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	in, err := s.contains(ctx, list.ID, productID)
	if err != nil {
		return false, err
	}

	assoc := s.db.WithContext(ctx).Model(list).Association("Products")
	if in {
		if err := assoc.Delete(&product); err != nil {
			return false, fmt.Errorf("remove from wishlist: %w", err)
		}
		return false, nil
	}
	if err := assoc.Append(&product); err != nil {
		return false, fmt.Errorf("add to wishlist: %w", err)
	}
	return true, nil
}

// Contains reports whether productID is in the user's wishlist.
// A user without a wishlist has nothing in it.
func (s *Service) Contains(ctx context.Context, userID, productID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var list models.Wishlist
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.contains(ctx, list.ID, productID)
}

func (s *Service) contains(ctx context.Context, wishlistID, productID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Table("wishlist_products").
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
