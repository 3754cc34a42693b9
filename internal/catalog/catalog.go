package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrCategoryInactive    = errors.New("cannot attach to an inactive category")
	ErrSubcategoryInactive = errors.New("cannot attach to an inactive subcategory")
	ErrCategoryMismatch    = errors.New("subcategory does not belong to the given category")
)

// CascadeResult reports how many child rows a deactivation touched.
type CascadeResult struct {
	Subcategories int `json:"subcategories"`
	Products      int `json:"products"`
}

// DependentsError blocks a delete while child rows still reference the
// entity. Deactivation is the supported alternative.
type DependentsError struct {
	Entity        string
	Subcategories int
	Products      int
	OrderLines    int
}

func (e *DependentsError) Error() string {
	switch {
	case e.OrderLines > 0:
		return fmt.Sprintf("cannot delete %s: %d order lines reference it; deactivate it instead", e.Entity, e.OrderLines)
	case e.Subcategories > 0 && e.Products > 0:
		return fmt.Sprintf("cannot delete %s: it has %d subcategories and %d products; deactivate it instead", e.Entity, e.Subcategories, e.Products)
	case e.Subcategories > 0:
		return fmt.Sprintf("cannot delete %s: it has %d subcategories; deactivate it instead", e.Entity, e.Subcategories)
	default:
		return fmt.Sprintf("cannot delete %s: it has %d products; deactivate it instead", e.Entity, e.Products)
	}
}

// StatusCount splits a row count by active flag.
type StatusCount struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Stats summarizes the inventory under a category or subcategory.
type Stats struct {
	Subcategories  *StatusCount `json:"subcategories,omitempty"`
	Products       StatusCount  `json:"products"`
	StockTotal     int          `json:"stockTotal"`
	InventoryValue float64      `json:"inventoryValue"`
}

// Repository performs the cross-entity queries the engine cannot express
// through the per-entity repositories: transactional cascades, dependent
// counts and inventory rollups.
type Repository interface {
	// DeactivateCategoryTree flips the category and everything under it to
	// inactive in one transaction; a failure anywhere rolls the whole
	// cascade back.
	DeactivateCategoryTree(categoryID int) (CascadeResult, error)
	// DeactivateSubcategoryTree flips the subcategory and its products.
	DeactivateSubcategoryTree(subcategoryID int) (CascadeResult, error)
	CategoryDependents(categoryID int) (subcategories int, products int, err error)
	SubcategoryDependents(subcategoryID int) (products int, err error)
	ProductDependents(productID int) (orderLines int, err error)
	CategoryStats(categoryID int) (Stats, error)
	SubcategoryStats(subcategoryID int) (Stats, error)
}
