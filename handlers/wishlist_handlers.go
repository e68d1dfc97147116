package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ViewWishlist(c *gin.Context) {
	list, err := h.Wishlist.Get(c.Request.Context(), mustUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) ToggleWishlist(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	in, err := h.Wishlist.Toggle(c.Request.Context(), mustUserID(c), productID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": productID, "in_wishlist": in})
}
