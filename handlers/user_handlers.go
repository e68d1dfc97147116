package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/judyrop/handmade-store/accounts"
	"github.com/judyrop/handmade-store/middleware"
	"github.com/judyrop/handmade-store/models"
)

// startSession issues the session cookie for user and folds any guest cart
// into the user's cart.
func (h *Handlers) startSession(c *gin.Context, status int, user *models.User) {
	ctx := c.Request.Context()
	token, err := h.Tokens.Generate(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	h.setCookie(c, middleware.SessionCookie, token, int(h.Tokens.TTL().Seconds()))

	if sid, err := c.Cookie(CartCookie); err == nil && sid != "" {
		if err := h.Carts.Merge(ctx, sid, user.ID); err != nil {
			slog.WarnContext(ctx, "merge guest cart",
				slog.Uint64("user_id", uint64(user.ID)),
				slog.Any("err", err))
		} else {
			h.setCookie(c, CartCookie, "", -1)
		}
	}

	c.JSON(status, gin.H{"user": user, "token": token})
}

func (h *Handlers) Register(c *gin.Context) {
	var input accounts.Registration
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Accounts.Register(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, user)
}

func (h *Handlers) Login(c *gin.Context) {
	var input accounts.Credentials
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Accounts.Authenticate(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	h.startSession(c, http.StatusOK, user)
}

type googleLoginInput struct {
	IDToken string `json:"id_token" form:"id_token" binding:"required"`
}

func (h *Handlers) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not enabled"})
		return
	}
	var input googleLoginInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	identity, err := h.Google.Verify(ctx, input.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	user, err := h.Accounts.LoginWithGoogle(ctx, identity)
	if err != nil {
		fail(c, err)
		return
	}
	h.startSession(c, http.StatusOK, user)
}

// Logout drops the session cookie. Issued tokens stay valid until they expire.
func (h *Handlers) Logout(c *gin.Context) {
	h.setCookie(c, middleware.SessionCookie, "", -1)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *Handlers) Account(c *gin.Context) {
	ctx := c.Request.Context()
	userID := mustUserID(c)
	user, err := h.Accounts.Get(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	orders, err := h.Accounts.Orders(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "orders": orders})
}

func (h *Handlers) Orders(c *gin.Context) {
	orders, err := h.Accounts.Orders(c.Request.Context(), mustUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handlers) OrderDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Accounts.Order(c.Request.Context(), mustUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handlers) Settings(c *gin.Context) {
	user, err := h.Accounts.Get(c.Request.Context(), mustUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) UpdateSettings(c *gin.Context) {
	var input accounts.ProfileUpdate
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Accounts.UpdateProfile(c.Request.Context(), mustUserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
