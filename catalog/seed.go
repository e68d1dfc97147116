package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/judyrop/handmade-store/models"
)

// SeedFile is the YAML layout accepted by Seed. Categories are created in
// file order, so parents must come before their children.
type SeedFile struct {
	Categories []NewCategory `yaml:"categories"`
	Products   []NewProduct  `yaml:"products"`
}

type SeedResult struct {
	Categories int
	Products   int
}

func (s *Service) SeedFromPath(ctx context.Context, path string) (SeedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeedResult{}, err
	}
	defer f.Close()
	return s.Seed(ctx, f)
}

// Seed creates the categories and products in r whose slugs do not exist yet.
func (s *Service) Seed(ctx context.Context, r io.Reader) (SeedResult, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return SeedResult{}, fmt.Errorf("decode seed file: %w", err)
	}

	var res SeedResult
	for i, c := range file.Categories {
		exists, err := s.slugExists(ctx, &models.Category{}, slugFor(c.Slug, c.Name))
		if err != nil {
			return res, err
		}
		if exists {
			continue
		}
		if _, err := s.CreateCategory(ctx, c); err != nil {
			return res, fmt.Errorf("category %d (%s): %w", i, c.Name, err)
		}
		res.Categories++
	}

	for i, p := range file.Products {
		exists, err := s.slugExists(ctx, &models.Product{}, slugFor(p.Slug, p.Name))
		if err != nil {
			return res, err
		}
		if exists {
			continue
		}
		if _, err := s.CreateProduct(ctx, p); err != nil {
			return res, fmt.Errorf("product %d (%s): %w", i, p.Name, err)
		}
		res.Products++
	}

	return res, nil
}

func (s *Service) slugExists(ctx context.Context, model any, slug string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(model).Where("slug = ?", slug).Count(&n).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return n > 0, nil
}
