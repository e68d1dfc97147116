package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judyrop/handmade-store/accounts"
	"github.com/judyrop/handmade-store/auth"
	"github.com/judyrop/handmade-store/models"
	"github.com/judyrop/handmade-store/testutil"
)

func register(t *testing.T, svc *accounts.Service, username string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), accounts.Registration{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := accounts.NewService(testutil.OpenDB(t))
	ctx := context.Background()

	u := register(t, svc, "june")
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	got, err := svc.Authenticate(ctx, accounts.Credentials{Username: "june", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, accounts.Credentials{Username: "june", Password: "nope"})
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, accounts.Credentials{Username: "ghost", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestRegisterRejections(t *testing.T) {
	svc := accounts.NewService(testutil.OpenDB(t))
	ctx := context.Background()
	register(t, svc, "june")

	_, err := svc.Register(ctx, accounts.Registration{
		Username: "june", Email: "other@example.com", Password: "s3cret-pass", PasswordConfirm: "s3cret-pass",
	})
	assert.ErrorIs(t, err, accounts.ErrUsernameTaken)

	_, err = svc.Register(ctx, accounts.Registration{
		Username: "amani", Email: "amani@example.com", Password: "s3cret-pass", PasswordConfirm: "s3cret-typo",
	})
	assert.ErrorIs(t, err, accounts.ErrPasswordMismatch)

	for _, name := range []string{"  ab  ", "   ", "\tab\n"} {
		_, err = svc.Register(ctx, accounts.Registration{
			Username: name, Email: "ab@example.com", Password: "s3cret-pass", PasswordConfirm: "s3cret-pass",
		})
		assert.ErrorIs(t, err, accounts.ErrInvalidUsername, "username %q", name)
	}

	u, err := svc.Register(ctx, accounts.Registration{
		Username: "  abc  ", Email: "abc@example.com", Password: "s3cret-pass", PasswordConfirm: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", u.Username)
}

func TestLoginWithGoogle(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := accounts.NewService(db)
	ctx := context.Background()
	existing := register(t, svc, "june")

	t.Run("links account with same email", func(t *testing.T) {
		u, err := svc.LoginWithGoogle(ctx, &auth.ExternalIdentity{
			Subject: "g-1", Email: existing.Email, EmailVerified: true,
		})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, u.ID)

		again, err := svc.LoginWithGoogle(ctx, &auth.ExternalIdentity{Subject: "g-1"})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, again.ID)
	})

	t.Run("creates new account", func(t *testing.T) {
		u, err := svc.LoginWithGoogle(ctx, &auth.ExternalIdentity{
			Subject: "g-2", Email: "june@gmail.com", EmailVerified: true, GivenName: "June",
		})
		require.NoError(t, err)
		assert.NotEqual(t, existing.ID, u.ID)
		// "june" is taken
		assert.Equal(t, "june1", u.Username)
		assert.Equal(t, "June", u.FirstName)
	})

	t.Run("unverified email", func(t *testing.T) {
		_, err := svc.LoginWithGoogle(ctx, &auth.ExternalIdentity{Subject: "g-3", Email: "x@example.com"})
		assert.ErrorIs(t, err, accounts.ErrUnverifiedEmail)
	})
}

func TestOrdersAreScopedToUser(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := accounts.NewService(db)
	ctx := context.Background()
	cat := testutil.Category(t, db, "Frames", nil)
	oak := testutil.Product(t, db, cat, "Oak Frame", "30.00")
	june := testutil.User(t, db, "june")
	amani := testutil.User(t, db, "amani")

	older := testutil.DeliveredOrder(t, db, june, oak)
	require.NoError(t, db.Model(&older).Update("created_at", time.Now().Add(-time.Hour)).Error)
	newer := testutil.DeliveredOrder(t, db, june, oak)
	theirs := testutil.DeliveredOrder(t, db, amani, oak)

	orders, err := svc.Orders(ctx, june.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
	assert.Len(t, orders[0].Items, 1)

	got, err := svc.Order(ctx, june.ID, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oak Frame", got.Items[0].ProductName)

	_, err = svc.Order(ctx, june.ID, theirs.ID)
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestUpdateProfileKeepsOmittedFields(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := accounts.NewService(db)
	ctx := context.Background()
	u := register(t, svc, "june")

	first := "June"
	got, err := svc.UpdateProfile(ctx, u.ID, accounts.ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "June", got.FirstName)
	assert.Equal(t, "june@example.com", got.Email)

	email := "june@handmade.test"
	got, err = svc.UpdateProfile(ctx, u.ID, accounts.ProfileUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "June", got.FirstName)
	assert.Equal(t, email, got.Email)

	_, err = svc.UpdateProfile(ctx, 9999, accounts.ProfileUpdate{FirstName: &first})
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}
