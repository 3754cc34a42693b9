package cart

// CartItem is one (user, product) row in the cart. UnitPrice is the price
// snapshot taken when the product was added; later price changes never touch
// existing rows.
type CartItem struct {
	ID        int     `json:"id"`
	UserID    int     `json:"userId"`
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`

	// Denormalized product fields filled on reads for the API response.
	ProductName  string  `json:"productName,omitempty"`
	ProductImage *string `json:"productImage,omitempty"`
}

// Subtotal is the snapshot price times the quantity.
func (i CartItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Total sums the subtotals in memory; reads need no database aggregate.
func Total(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
