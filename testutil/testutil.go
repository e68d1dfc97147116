// Package testutil provides sqlite-backed fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/judyrop/handmade-store/database"
	"github.com/judyrop/handmade-store/models"
)

// OpenDB returns a migrated private in-memory database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func Category(t *testing.T, db *gorm.DB, name string, parent *models.Category) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: slug.Make(name)}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func Product(t *testing.T, db *gorm.DB, category models.Category, name, price string) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Slug:        slug.Make(name),
		Description: name + " made by hand",
		Price:       decimal.RequireFromString(price),
		Available:   true,
		CategoryID:  category.ID,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func User(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// DeliveredOrder records a delivered purchase of product by user.
func DeliveredOrder(t *testing.T, db *gorm.DB, user models.User, product models.Product) models.Order {
	t.Helper()
	o := models.Order{
		UserID:        user.ID,
		FirstName:     "June",
		LastName:      "Jun",
		Email:         user.Email,
		Address:       "1 Market St",
		City:          "Nairobi",
		Zipcode:       "00100",
		TotalPrice:    product.Price,
		PaymentMethod: models.DefaultPaymentMethod,
		Status:        models.OrderStatusDelivered,
		Items: []models.OrderItem{{
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    1,
		}},
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&o).Error)
	return o
}
