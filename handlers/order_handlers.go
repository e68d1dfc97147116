package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/judyrop/handmade-store/checkout"
	"github.com/judyrop/handmade-store/models"
)

func (h *Handlers) CheckoutPreview(c *gin.Context) {
	userCart, err := h.Checkout.Preview(c.Request.Context(), mustUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": userCart.View()})
}

func (h *Handlers) PlaceOrder(c *gin.Context) {
	var input checkout.ShippingDetails
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	order, err := h.Checkout.Place(ctx, mustUserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	// notification failures are logged by the notifier, never returned
	_ = h.Notifier.OrderPlaced(ctx, *order)

	c.JSON(http.StatusCreated, order)
}

type statusInput struct {
	Status models.OrderStatus `json:"status" form:"status" binding:"required"`
}

func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input statusInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.Checkout.SetStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
