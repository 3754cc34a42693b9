package product

import (
	"fmt"
	"regexp"
)

// Product is a sellable item. Price and stock live here; stock mutations go
// through the repository so the decrement stays atomic under concurrent
// checkouts.
type Product struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	Image         *string `json:"image,omitempty"`
	SubcategoryID int     `json:"subcategoryId"`
	CategoryID    int     `json:"categoryId"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

// HasStock reports whether the product can cover the requested quantity.
func (p Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

var imagePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)

// ValidImageName reports whether name carries an allowed image extension.
func ValidImageName(name string) bool {
	return imagePattern.MatchString(name)
}

// Validate reports the validation problems of a product payload.
func Validate(p Product) []string {
	errs := []string{}
	if p.Name == "" {
		errs = append(errs, "name is required")
	} else if len(p.Name) < 3 || len(p.Name) > 200 {
		errs = append(errs, "name must be between 3 and 200 characters")
	}
	if p.Price < 0 {
		errs = append(errs, "price must be >= 0")
	}
	if p.Stock < 0 {
		errs = append(errs, "stock must be >= 0")
	}
	if p.SubcategoryID <= 0 {
		errs = append(errs, "subcategoryId is required")
	}
	if p.CategoryID <= 0 {
		errs = append(errs, "categoryId is required")
	}
	if p.Image != nil && *p.Image != "" && !ValidImageName(*p.Image) {
		errs = append(errs, "image must be a JPG, JPEG, PNG or GIF file")
	}
	return errs
}

// InsufficientStockError names the product that could not cover a requested
// quantity.
type InsufficientStockError struct {
	ProductID int
	Name      string
	Stock     int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (id %d): have %d, requested %d",
		e.Name, e.ProductID, e.Stock, e.Requested)
}
