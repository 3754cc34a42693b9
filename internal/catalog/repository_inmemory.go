package catalog

import (
	"github.com/tienda-labs/ecommerce-backend/internal/category"
	"github.com/tienda-labs/ecommerce-backend/internal/product"
	"github.com/tienda-labs/ecommerce-backend/internal/subcategory"
)

// InMemoryRepository implements the cross-entity queries over the in-memory
// entity repositories. Used by tests; cascades are trivially atomic here.
type InMemoryRepository struct {
	categories    *category.InMemoryRepository
	subcategories *subcategory.InMemoryRepository
	products      *product.InMemoryRepository
	orderLines    map[int]int // productID -> referencing line count
}

func NewInMemoryRepository(
	categories *category.InMemoryRepository,
	subcategories *subcategory.InMemoryRepository,
	products *product.InMemoryRepository,
) *InMemoryRepository {
	return &InMemoryRepository{
		categories:    categories,
		subcategories: subcategories,
		products:      products,
		orderLines:    map[int]int{},
	}
}

// AddOrderLineRef registers order lines referencing a product so delete
// guards can be exercised in tests.
func (r *InMemoryRepository) AddOrderLineRef(productID int, count int) {
	r.orderLines[productID] += count
}

func (r *InMemoryRepository) DeactivateCategoryTree(categoryID int) (CascadeResult, error) {
	if err := r.categories.SetActive(categoryID, false); err != nil {
		return CascadeResult{}, err
	}

	out := CascadeResult{}
	subs, _ := r.subcategories.List(&categoryID, nil)
	for _, sc := range subs {
		if err := r.subcategories.SetActive(sc.ID, false); err != nil {
			return CascadeResult{}, err
		}
		out.Subcategories++
	}
	prods, _, _ := r.products.List(product.ListFilter{CategoryID: &categoryID})
	for _, p := range prods {
		if err := r.products.SetActive(p.ID, false); err != nil {
			return CascadeResult{}, err
		}
		out.Products++
	}
	return out, nil
}

func (r *InMemoryRepository) DeactivateSubcategoryTree(subcategoryID int) (CascadeResult, error) {
	if err := r.subcategories.SetActive(subcategoryID, false); err != nil {
		return CascadeResult{}, err
	}

	out := CascadeResult{}
	prods, _, _ := r.products.List(product.ListFilter{SubcategoryID: &subcategoryID})
	for _, p := range prods {
		if err := r.products.SetActive(p.ID, false); err != nil {
			return CascadeResult{}, err
		}
		out.Products++
	}
	return out, nil
}

func (r *InMemoryRepository) CategoryDependents(categoryID int) (int, int, error) {
	subs, _ := r.subcategories.List(&categoryID, nil)
	prods, _, _ := r.products.List(product.ListFilter{CategoryID: &categoryID})
	return len(subs), len(prods), nil
}

func (r *InMemoryRepository) SubcategoryDependents(subcategoryID int) (int, error) {
	prods, _, _ := r.products.List(product.ListFilter{SubcategoryID: &subcategoryID})
	return len(prods), nil
}

func (r *InMemoryRepository) ProductDependents(productID int) (int, error) {
	return r.orderLines[productID], nil
}

func (r *InMemoryRepository) CategoryStats(categoryID int) (Stats, error) {
	stats := Stats{}

	subs, _ := r.subcategories.List(&categoryID, nil)
	sc := StatusCount{Total: len(subs)}
	for _, s := range subs {
		if s.Active {
			sc.Active++
		}
	}
	sc.Inactive = sc.Total - sc.Active
	stats.Subcategories = &sc

	prods, _, _ := r.products.List(product.ListFilter{CategoryID: &categoryID})
	fillProductStats(&stats, prods)
	return stats, nil
}

func (r *InMemoryRepository) SubcategoryStats(subcategoryID int) (Stats, error) {
	stats := Stats{}
	prods, _, _ := r.products.List(product.ListFilter{SubcategoryID: &subcategoryID})
	fillProductStats(&stats, prods)
	return stats, nil
}

func fillProductStats(stats *Stats, prods []product.Product) {
	stats.Products.Total = len(prods)
	for _, p := range prods {
		if p.Active {
			stats.Products.Active++
		}
		stats.StockTotal += p.Stock
		stats.InventoryValue += p.Price * float64(p.Stock)
	}
	stats.Products.Inactive = stats.Products.Total - stats.Products.Active
}
