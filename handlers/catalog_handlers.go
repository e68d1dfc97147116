package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/judyrop/handmade-store/catalog"
	"github.com/judyrop/handmade-store/middleware"
	"github.com/judyrop/handmade-store/models"
	"github.com/judyrop/handmade-store/reviews"
)

func (h *Handlers) Home(c *gin.Context) {
	products, err := h.Catalog.Featured(c.Request.Context(), catalog.FeaturedLimit)
	if err != nil {
		fail(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handlers) Shop(c *gin.Context) {
	ctx := c.Request.Context()
	filter := catalog.Filter{
		CategorySlug: c.Query("category"),
		Query:        c.Query("q"),
		PriceMax:     catalog.ParsePriceMax(c.Query("price_max")),
		Sort:         catalog.Sort(c.Query("sort")),
	}

	products, err := h.Catalog.Search(ctx, filter)
	if err != nil {
		fail(c, err)
		return
	}
	categories, err := h.Catalog.Categories(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":         products,
		"categories":       categories,
		"current_category": filter.CategorySlug,
	})
}

func (h *Handlers) Categories(c *gin.Context) {
	categories, err := h.Catalog.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// RedirectToShop serves the old per-category pages.
func (h *Handlers) RedirectToShop(c *gin.Context) {
	c.Redirect(http.StatusFound, "/shop")
}

func (h *Handlers) ProductDetail(c *gin.Context) {
	ctx := c.Request.Context()
	product, err := h.Catalog.ProductBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	list, err := h.Reviews.List(ctx, product.ID)
	if err != nil {
		fail(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	verified, err := h.Reviews.VerifiedPurchase(ctx, userID, product.ID)
	if err != nil {
		fail(c, err)
		return
	}
	inWishlist, err := h.Wishlist.Contains(ctx, userID, product.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":     product,
		"reviews":     list,
		"is_verified": verified,
		"in_wishlist": inWishlist,
	})
}

func (h *Handlers) CreateReview(c *gin.Context) {
	ctx := c.Request.Context()
	product, err := h.Catalog.ProductBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}

	var input reviews.NewReview
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	review, err := h.Reviews.Create(ctx, mustUserID(c), product.ID, input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handlers) DeleteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	review, err := h.Reviews.Delete(c.Request.Context(), mustUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": review.ID, "product_id": review.ProductID})
}

func (h *Handlers) CreateCategory(c *gin.Context) {
	var input catalog.NewCategory
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	category, err := h.Catalog.CreateCategory(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handlers) CreateProduct(c *gin.Context) {
	var input catalog.NewProduct
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.Catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handlers) ExportProducts(c *gin.Context) {
	products, err := h.Catalog.AllProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := catalog.WriteXLSX(c.Writer, products); err != nil {
		// status already sent
		slog.ErrorContext(c.Request.Context(), "export products", slog.Any("err", err))
	}
}
