package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/judyrop/handmade-store/auth"
	"github.com/judyrop/handmade-store/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnverifiedEmail    = errors.New("email is not verified")
	ErrInvalidUsername    = errors.New("username must be 3 to 150 characters")
)

type Registration struct {
	Username        string `json:"username" form:"username" binding:"required,min=3,max=150"`
	Email           string `json:"email" form:"email" binding:"required,email,max=254"`
	FirstName       string `json:"first_name" form:"first_name" binding:"max=150"`
	LastName        string `json:"last_name" form:"last_name" binding:"max=150"`
	Password        string `json:"password" form:"password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" binding:"required"`
}

type Credentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// ProfileUpdate changes only the fields that are set.
type ProfileUpdate struct {
	FirstName *string `json:"first_name" form:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" form:"last_name" binding:"omitempty,max=150"`
	Email     *string `json:"email" form:"email" binding:"omitempty,email,max=254"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Register(ctx context.Context, in Registration) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 150 {
		return nil, ErrInvalidUsername
	}
	if in.Password != in.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	}
	err = s.db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate returns the user whose password matches.
func (s *Service) Authenticate(ctx context.Context, in Credentials) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(in.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// LoginWithGoogle finds the user linked to a verified Google identity.
// An existing account with the same verified email is linked on first use,
// otherwise a new passwordless account is created.
func (s *Service) LoginWithGoogle(ctx context.Context, id *auth.ExternalIdentity) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("google_subject = ?", id.Subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if id.Email == "" || !id.EmailVerified {
		return nil, ErrUnverifiedEmail
	}

	subject := id.Subject
	err = db.Where("email = ? AND google_subject IS NULL", id.Email).First(&user).Error
	if err == nil {
		if err := db.Model(&user).Update("google_subject", subject).Error; err != nil {
			return nil, fmt.Errorf("link google account: %w", err)
		}
		user.GoogleSubject = &subject
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := s.freeUsername(ctx, strings.SplitN(id.Email, "@", 2)[0])
	if err != nil {
		return nil, err
	}
	user = models.User{
		Username:      username,
		Email:         id.Email,
		FirstName:     id.GivenName,
		LastName:      id.FamilyName,
		GoogleSubject: &subject,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (s *Service) freeUsername(ctx context.Context, base string) (string, error) {
	if len(base) < 3 {
		base = "user"
	}
	if len(base) > 140 {
		base = base[:140]
	}
	candidate := base
	for i := 1; ; i++ {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", candidate).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func (s *Service) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Orders returns the user's orders, newest first.
func (s *Service) Orders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Order returns one order, only if it belongs to userID.
func (s *Service) Order(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.FirstName != nil {
		changes["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		changes["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		changes["email"] = strings.TrimSpace(*in.Email)
	}
	if len(changes) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.Get(ctx, userID)
}
