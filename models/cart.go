package models

import "github.com/shopspring/decimal"

// Subtotal is the line price at the product's current price.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// CartView is the JSON shape returned for a cart.
type CartView struct {
	ID         uint            `json:"id"`
	Items      []CartItemView  `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type CartItemView struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (c Cart) View() CartView {
	items := make([]CartItemView, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Slug:      item.Product.Slug,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}
	return CartView{
		ID:         c.ID,
		Items:      items,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}
