package wishlist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judyrop/handmade-store/models"
	"github.com/judyrop/handmade-store/testutil"
	"github.com/judyrop/handmade-store/wishlist"
)

func TestGetCreatesOnce(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	june := testutil.User(t, db, "june")
	svc := wishlist.NewService(db)

	first, err := svc.Get(ctx, june.ID)
	require.NoError(t, err)
	assert.Empty(t, first.Products)

	again, err := svc.Get(ctx, june.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var n int64
	require.NoError(t, db.Model(&models.Wishlist{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestToggleTwiceRestoresMembership(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	cat := testutil.Category(t, db, "Frames", nil)
	oak := testutil.Product(t, db, cat, "Oak Frame", "30.00")
	june := testutil.User(t, db, "june")
	svc := wishlist.NewService(db)

	in, err := svc.Contains(ctx, june.ID, oak.ID)
	require.NoError(t, err)
	assert.False(t, in)

	in, err = svc.Toggle(ctx, june.ID, oak.ID)
	require.NoError(t, err)
	assert.True(t, in)

	list, err := svc.Get(ctx, june.ID)
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Oak Frame", list.Products[0].Name)

	in, err = svc.Toggle(ctx, june.ID, oak.ID)
	require.NoError(t, err)
	assert.False(t, in)

	in, err = svc.Contains(ctx, june.ID, oak.ID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestToggleUnavailableAndMissingProducts(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	cat := testutil.Category(t, db, "Frames", nil)
	oak := testutil.Product(t, db, cat, "Oak Frame", "30.00")
	june := testutil.User(t, db, "june")
	svc := wishlist.NewService(db)

	_, err := svc.Toggle(ctx, june.ID, 9999)
	assert.ErrorIs(t, err, wishlist.ErrProductNotFound)

	in, err := svc.Toggle(ctx, june.ID, oak.ID)
	require.NoError(t, err)
	require.True(t, in)

	// a product taken off sale can still be removed
	require.NoError(t, db.Model(&oak).Update("available", false).Error)
	in, err = svc.Toggle(ctx, june.ID, oak.ID)
	require.NoError(t, err)
	assert.False(t, in)
}
