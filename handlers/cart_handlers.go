package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/judyrop/handmade-store/cart"
	"github.com/judyrop/handmade-store/models"
)

func (h *Handlers) resolveCart(c *gin.Context) (*models.Cart, bool) {
	userCart, err := h.Carts.Resolve(c.Request.Context(), h.cartIdentity(c))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return userCart, true
}

// respondCart reloads the cart and writes it.
func (h *Handlers) respondCart(c *gin.Context, userCart *models.Cart) {
	if err := h.Carts.Reload(c.Request.Context(), userCart); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userCart.View())
}

func (h *Handlers) ViewCart(c *gin.Context) {
	userCart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, userCart.View())
}

func (h *Handlers) AddToCart(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	userCart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	if _, err := h.Carts.Add(c.Request.Context(), userCart, productID); err != nil {
		fail(c, err)
		return
	}
	h.respondCart(c, userCart)
}

func (h *Handlers) RemoveFromCart(c *gin.Context) {
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}
	userCart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	if err := h.Carts.Remove(c.Request.Context(), userCart, itemID); err != nil {
		fail(c, err)
		return
	}
	h.respondCart(c, userCart)
}

func (h *Handlers) UpdateCartQuantity(c *gin.Context) {
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}
	userCart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	if _, err := h.Carts.Adjust(c.Request.Context(), userCart, itemID, cart.Action(c.Param("action"))); err != nil {
		fail(c, err)
		return
	}
	h.respondCart(c, userCart)
}
