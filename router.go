package main

import (
	"github.com/gin-gonic/gin"

	"github.com/judyrop/handmade-store/handlers"
	"github.com/judyrop/handmade-store/middleware"
)

type RouterOptions struct {
	// AdminAPIKey guards /admin. Admin routes are not mounted when it is empty.
	AdminAPIKey string
	CORSOrigins []string
}

func SetupRouter(h *handlers.Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(opts.CORSOrigins))
	}
	r.Use(middleware.Identity(h.Tokens))

	r.GET("/health", h.Health)

	// Catalog
	r.GET("/", h.Home)
	r.GET("/shop", h.Shop)
	r.GET("/categories", h.Categories)
	r.GET("/products/:slug", h.ProductDetail)
	r.POST("/products/:slug", middleware.RequireLogin(), h.CreateReview)
	r.GET("/keychains", h.RedirectToShop)
	r.GET("/frames", h.RedirectToShop)

	// Cart, guests included
	r.GET("/cart", h.ViewCart)
	r.POST("/cart/add/:product_id", h.AddToCart)
	r.POST("/cart/remove/:item_id", h.RemoveFromCart)
	r.POST("/cart/update/:item_id/:action", h.UpdateCartQuantity)

	// Auth
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/login/google", h.GoogleLogin)
	r.POST("/logout", h.Logout)

	authed := r.Group("/")
	authed.Use(middleware.RequireLogin())
	{
		authed.DELETE("/reviews/:id", h.DeleteReview)

		authed.GET("/checkout", h.CheckoutPreview)
		authed.POST("/checkout", h.PlaceOrder)

		authed.GET("/wishlist", h.ViewWishlist)
		authed.POST("/wishlist/toggle/:product_id", h.ToggleWishlist)

		authed.GET("/account", h.Account)
		authed.GET("/account/orders", h.Orders)
		authed.GET("/account/orders/:id", h.OrderDetail)
		authed.GET("/account/settings", h.Settings)
		authed.POST("/account/settings", h.UpdateSettings)
	}

	if opts.AdminAPIKey != "" {
		admin := r.Group("/admin")
		admin.Use(middleware.RequireAPIKey(opts.AdminAPIKey))
		{
			admin.POST("/categories", h.CreateCategory)
			admin.POST("/products", h.CreateProduct)
			admin.GET("/products/export", h.ExportProducts)
			admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
		}
	}

	return r
}
