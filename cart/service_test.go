package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/judyrop/handmade-store/cart"
	"github.com/judyrop/handmade-store/models"
	"github.com/judyrop/handmade-store/testutil"
)

func setup(t *testing.T) (*gorm.DB, *cart.Service, models.Product, models.Product) {
	db := testutil.OpenDB(t)
	c := testutil.Category(t, db, "Keychains", nil)
	a := testutil.Product(t, db, c, "Leather Keychain", "12.50")
	b := testutil.Product(t, db, c, "Brass Keychain", "7.25")
	return db, cart.NewService(db), a, b
}

func TestResolveCreatesOncePerIdentity(t *testing.T) {
	db, svc, _, _ := setup(t)
	ctx := context.Background()
	user := testutil.User(t, db, "june")

	first, err := svc.Resolve(ctx, cart.Identity{UserID: user.ID})
	require.NoError(t, err)
	again, err := svc.Resolve(ctx, cart.Identity{UserID: user.ID, SessionID: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	require.NotNil(t, first.UserID)
	assert.Nil(t, first.SessionID)

	guest, err := svc.Resolve(ctx, cart.Identity{SessionID: "abc"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, guest.ID)
	assert.Nil(t, guest.UserID)

	var n int64
	require.NoError(t, db.Model(&models.Cart{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)

	_, err = svc.Resolve(ctx, cart.Identity{})
	assert.ErrorIs(t, err, cart.ErrNoIdentity)
}

func TestAddIncreasesCountByOne(t *testing.T) {
	_, svc, keychain, brass := setup(t)
	ctx := context.Background()

	c, err := svc.Resolve(ctx, cart.Identity{SessionID: "guest-1"})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		item, err := svc.Add(ctx, c, keychain.ID)
		require.NoError(t, err)
		assert.Equal(t, i, item.Quantity)
	}
	_, err = svc.Add(ctx, c, brass.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Reload(ctx, c))
	require.Len(t, c.Items, 2)
	assert.Equal(t, 4, c.TotalItems())
	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("44.75")))
}

func TestAddRejectsUnknownOrUnavailableProduct(t *testing.T) {
	db, svc, keychain, _ := setup(t)
	ctx := context.Background()
	c, err := svc.Resolve(ctx, cart.Identity{SessionID: "guest-1"})
	require.NoError(t, err)

	_, err = svc.Add(ctx, c, 9999)
	assert.ErrorIs(t, err, cart.ErrProductNotFound)

	require.NoError(t, db.Model(&keychain).Update("available", false).Error)
	_, err = svc.Add(ctx, c, keychain.ID)
	assert.ErrorIs(t, err, cart.ErrProductNotFound)
}

func TestAdjustAndRemove(t *testing.T) {
	_, svc, keychain, brass := setup(t)
	ctx := context.Background()
	c, err := svc.Resolve(ctx, cart.Identity{SessionID: "guest-1"})
	require.NoError(t, err)

	item, err := svc.Add(ctx, c, keychain.ID)
	require.NoError(t, err)

	qty, err := svc.Adjust(ctx, c, item.ID, cart.Increase)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	qty, err = svc.Adjust(ctx, c, item.ID, cart.Decrease)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	_, err = svc.Adjust(ctx, c, item.ID, cart.Action("double"))
	assert.ErrorIs(t, err, cart.ErrInvalidAction)

	// last unit removed deletes the line
	qty, err = svc.Adjust(ctx, c, item.ID, cart.Decrease)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
	require.NoError(t, svc.Reload(ctx, c))
	assert.Empty(t, c.Items)

	_, err = svc.Adjust(ctx, c, item.ID, cart.Increase)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	other, err := svc.Add(ctx, c, brass.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, c, other.ID))
	assert.ErrorIs(t, svc.Remove(ctx, c, other.ID), cart.ErrItemNotFound)
}

func TestItemsOfAnotherCartAreNotReachable(t *testing.T) {
	_, svc, keychain, _ := setup(t)
	ctx := context.Background()
	mine, err := svc.Resolve(ctx, cart.Identity{SessionID: "mine"})
	require.NoError(t, err)
	theirs, err := svc.Resolve(ctx, cart.Identity{SessionID: "theirs"})
	require.NoError(t, err)

	item, err := svc.Add(ctx, theirs, keychain.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Remove(ctx, mine, item.ID), cart.ErrItemNotFound)
	_, err = svc.Adjust(ctx, mine, item.ID, cart.Decrease)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}

func TestClear(t *testing.T) {
	_, svc, keychain, brass := setup(t)
	ctx := context.Background()
	c, err := svc.Resolve(ctx, cart.Identity{SessionID: "guest-1"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, c, keychain.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, c, brass.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, c))
	require.NoError(t, svc.Reload(ctx, c))
	assert.Empty(t, c.Items)
}

func TestMergeMovesGuestLinesIntoUserCart(t *testing.T) {
	db, svc, keychain, brass := setup(t)
	ctx := context.Background()
	user := testutil.User(t, db, "june")

	owned, err := svc.Resolve(ctx, cart.Identity{UserID: user.ID})
	require.NoError(t, err)
	_, err = svc.Add(ctx, owned, keychain.ID)
	require.NoError(t, err)

	guest, err := svc.Resolve(ctx, cart.Identity{SessionID: "guest-1"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, keychain.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, brass.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Merge(ctx, "guest-1", user.ID))

	merged, err := svc.Resolve(ctx, cart.Identity{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, owned.ID, merged.ID)
	require.Len(t, merged.Items, 2)
	assert.Equal(t, 2, merged.Items[0].Quantity)
	assert.Equal(t, 1, merged.Items[1].Quantity)

	var guests int64
	require.NoError(t, db.Model(&models.Cart{}).Where("session_id = ?", "guest-1").Count(&guests).Error)
	assert.Zero(t, guests)

	// nothing to merge is not an error
	assert.NoError(t, svc.Merge(ctx, "guest-1", user.ID))
	assert.NoError(t, svc.Merge(ctx, "", user.ID))
}
