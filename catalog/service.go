package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/judyrop/handmade-store/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrSlugTaken    = errors.New("slug already in use")
)

const FeaturedLimit = 8

type Sort string

const (
	SortDefault   Sort = ""
	SortPriceLow  Sort = "price_low"
	SortPriceHigh Sort = "price_high"
	SortNewest    Sort = "newest"
)

// Filter narrows the shop listing. Zero values mean "no filter".
type Filter struct {
	CategorySlug string
	Query        string
	PriceMax     *decimal.Decimal
	Sort         Sort
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Featured returns the first available products for the home page.
func (s *Service) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = FeaturedLimit
	}
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("available = ?", true).
		Order("id").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	return products, nil
}

// likeEscaper makes user text match literally inside a LIKE pattern.
// The escape character is '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search lists available products matching f.
func (s *Service) Search(ctx context.Context, f Filter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{}).Where("available = ?", true)

	if f.CategorySlug != "" {
		var category models.Category
		err := s.db.WithContext(ctx).Where("slug = ?", f.CategorySlug).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Product{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("find category %q: %w", f.CategorySlug, err)
		}
		ids, err := descendantCategoryIDs(s.db.WithContext(ctx), category.ID)
		if err != nil {
			return nil, err
		}
		q = q.Where("category_id IN ?", ids)
	}

	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", like, like)
	}

	if f.PriceMax != nil {
		q = q.Where("price <= ?", *f.PriceMax)
	}

	switch f.Sort {
	case SortPriceLow:
		q = q.Order("price ASC").Order("id")
	case SortPriceHigh:
		q = q.Order("price DESC").Order("id")
	case SortNewest:
		q = q.Order("created_at DESC").Order("id DESC")
	default:
		q = q.Order("id")
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ProductBySlug returns an available product with its category.
func (s *Service) ProductBySlug(ctx context.Context, productSlug string) (models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND available = ?", productSlug, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("product %q: %w", productSlug, err)
	}
	return p, nil
}

// AllProducts returns every product, available or not, with categories.
func (s *Service) AllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Preload("Category").Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

type NewCategory struct {
	Name       string `json:"name" form:"name" yaml:"name" binding:"required,max=200"`
	Slug       string `json:"slug" form:"slug" yaml:"slug" binding:"omitempty,max=200"`
	ParentSlug string `json:"parent" form:"parent" yaml:"parent"`
}

func (s *Service) CreateCategory(ctx context.Context, in NewCategory) (models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Category{}, ErrInvalidInput
	}
	category := models.Category{Name: name, Slug: slugFor(in.Slug, name)}
	if category.Slug == "" {
		return models.Category{}, ErrInvalidInput
	}

	if in.ParentSlug != "" {
		var parent models.Category
		err := s.db.WithContext(ctx).Where("slug = ?", in.ParentSlug).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Category{}, fmt.Errorf("parent %q: %w", in.ParentSlug, ErrNotFound)
		}
		if err != nil {
			return models.Category{}, err
		}
		category.ParentID = &parent.ID
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Category{}, ErrSlugTaken
		}
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

type NewProduct struct {
	Name         string `json:"name" form:"name" yaml:"name" binding:"required,max=200"`
	Slug         string `json:"slug" form:"slug" yaml:"slug" binding:"omitempty,max=200"`
	Description  string `json:"description" form:"description" yaml:"description"`
	Price        string `json:"price" form:"price" yaml:"price" binding:"required"`
	Available    *bool  `json:"available" form:"available" yaml:"available"`
	CategorySlug string `json:"category" form:"category" yaml:"category" binding:"required"`
}

func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (models.Product, error) {
	name := strings.TrimSpace(in.Name)
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if name == "" || err != nil || price.IsNegative() {
		return models.Product{}, ErrInvalidInput
	}

	var category models.Category
	err = s.db.WithContext(ctx).Where("slug = ?", in.CategorySlug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, fmt.Errorf("category %q: %w", in.CategorySlug, ErrNotFound)
	}
	if err != nil {
		return models.Product{}, err
	}

	available := true
	if in.Available != nil {
		available = *in.Available
	}

	product := models.Product{
		Name:        name,
		Slug:        slugFor(in.Slug, name),
		Description: in.Description,
		Price:       price.Round(2),
		Available:   available,
		CategoryID:  category.ID,
	}
	if product.Slug == "" {
		return models.Product{}, ErrInvalidInput
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Product{}, ErrSlugTaken
		}
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	product.Category = &category
	return product, nil
}

// ParsePriceMax parses the price_max query value; junk is ignored.
func ParsePriceMax(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

func slugFor(explicit, name string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return slug.Make(s)
	}
	return slug.Make(name)
}

// descendantCategoryIDs returns categoryID plus every category below it.
func descendantCategoryIDs(db *gorm.DB, categoryID uint) ([]uint, error) {
	ids := []uint{categoryID}
	var children []models.Category
	if err := db.Where("parent_id = ?", categoryID).Find(&children).Error; err != nil {
		return nil, fmt.Errorf("child categories of %d: %w", categoryID, err)
	}
	for _, child := range children {
		childIDs, err := descendantCategoryIDs(db, child.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, childIDs...)
	}
	return ids, nil
}
