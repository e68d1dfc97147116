package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/judyrop/handmade-store/accounts"
	"github.com/judyrop/handmade-store/auth"
	"github.com/judyrop/handmade-store/cart"
	"github.com/judyrop/handmade-store/catalog"
	"github.com/judyrop/handmade-store/checkout"
	"github.com/judyrop/handmade-store/middleware"
	"github.com/judyrop/handmade-store/notify"
	"github.com/judyrop/handmade-store/reviews"
	"github.com/judyrop/handmade-store/wishlist"
)

const CartCookie = "cart_session"

// Handlers holds the services behind every route.
type Handlers struct {
	Catalog  *catalog.Service
	Carts    *cart.Service
	Checkout *checkout.Service
	Reviews  *reviews.Service
	Wishlist *wishlist.Service
	Accounts *accounts.Service

	Tokens *auth.Tokens
	// Google is nil when Google sign-in is not configured.
	Google   auth.IDTokenVerifier
	Notifier notify.Notifier

	CookieSecure bool
}

func New(db *gorm.DB, tokens *auth.Tokens) *Handlers {
	carts := cart.NewService(db)
	return &Handlers{
		Catalog:  catalog.NewService(db),
		Carts:    carts,
		Checkout: checkout.NewService(db, carts),
		Reviews:  reviews.NewService(db),
		Wishlist: wishlist.NewService(db),
		Accounts: accounts.NewService(db),
		Tokens:   tokens,
		Notifier: notify.Nop{},
	}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail writes err with the status its kind maps to.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("err", err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, checkout.ErrOrderNotFound),
		errors.Is(err, reviews.ErrNotFound),
		errors.Is(err, wishlist.ErrProductNotFound),
		errors.Is(err, accounts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, cart.ErrInvalidAction),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidStatus),
		errors.Is(err, reviews.ErrInvalidInput),
		errors.Is(err, accounts.ErrPasswordMismatch),
		errors.Is(err, accounts.ErrInvalidUsername):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrSlugTaken),
		errors.Is(err, accounts.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, accounts.ErrInvalidCredentials),
		errors.Is(err, accounts.ErrUnverifiedEmail),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(n), true
}

// mustUserID is for routes behind RequireLogin.
func mustUserID(c *gin.Context) uint {
	id, _ := middleware.UserID(c)
	return id
}

func (h *Handlers) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.CookieSecure, true)
}

// cartIdentity picks the logged in user or the guest session, minting a
// guest session cookie on first use.
func (h *Handlers) cartIdentity(c *gin.Context) cart.Identity {
	if id, ok := middleware.UserID(c); ok {
		return cart.Identity{UserID: id}
	}
	sid, err := c.Cookie(CartCookie)
	if err != nil || sid == "" {
		sid = uuid.NewString()
		h.setCookie(c, CartCookie, sid, 0)
	}
	return cart.Identity{SessionID: sid}
}
