package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/judyrop/handmade-store/models"
)

var (
	ErrNotFound     = errors.New("review not found")
	ErrInvalidInput = errors.New("invalid review")
)

const (
	MinRating = 1
	MaxRating = 5
)

type NewReview struct {
	Rating  int    `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" form:"comment" binding:"required"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the reviews of a product, newest first.
func (s *Service) List(ctx context.Context, productID uint) ([]models.Review, error) {
	reviews := []models.Review{}
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews of product %d: %w", productID, err)
	}
	return reviews, nil
}

// Create stores a review. Buying the product first is not required.
func (s *Service) Create(ctx context.Context, userID, productID uint, in NewReview) (*models.Review, error) {
	comment := strings.TrimSpace(in.Comment)
	if in.Rating < MinRating || in.Rating > MaxRating || comment == "" {
		return nil, ErrInvalidInput
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   comment,
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(&review, review.ID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes a review written by userID and returns it.
func (s *Service) Delete(ctx context.Context, userID, reviewID uint) (*models.Review, error) {
	db := s.db.WithContext(ctx)

	var review models.Review
	err := db.Where("id = ? AND user_id = ?", reviewID, userID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := db.Delete(&review).Error; err != nil {
		return nil, fmt.Errorf("delete review %d: %w", review.ID, err)
	}
	return &review, nil
}

// VerifiedPurchase reports whether userID has a delivered order containing productID.
func (s *Service) VerifiedPurchase(ctx context.Context, userID, productID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, models.OrderStatusDelivered, productID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return n > 0, nil
}
