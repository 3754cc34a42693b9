package catalog

import (
	"strings"
	"time"

	"github.com/tienda-labs/ecommerce-backend/internal/category"
	"github.com/tienda-labs/ecommerce-backend/internal/product"
	"github.com/tienda-labs/ecommerce-backend/internal/subcategory"
)

// Engine owns every catalog mutation. Centralizing the cross-entity rules
// here (parent-must-be-active, cascade deactivation, delete-blocked-by-
// dependents) keeps the entity packages free of references to each other.
type Engine struct {
	categories    category.Repository
	subcategories subcategory.Repository
	products      product.Repository
	repo          Repository
}

func NewEngine(
	categories category.Repository,
	subcategories subcategory.Repository,
	products product.Repository,
	repo Repository,
) *Engine {
	return &Engine{
		categories:    categories,
		subcategories: subcategories,
		products:      products,
		repo:          repo,
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ---- categories -----------------------------------------------------------

func (e *Engine) CreateCategory(name string, description *string) (category.Category, error) {
	name = strings.TrimSpace(name)
	if _, err := e.categories.GetByName(name); err == nil {
		return category.Category{}, category.ErrNameExists
	} else if err != category.ErrNotFound {
		return category.Category{}, err
	}

	ts := now()
	return e.categories.Create(category.Category{
		Name:        name,
		Description: description,
		Active:      true,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
}

// CategoryUpdate carries the fields a PUT/PATCH may change; nil means keep.
type CategoryUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// UpdateCategory applies the partial update. Setting Active from true to
// false runs the same cascade as the toggle endpoint.
func (e *Engine) UpdateCategory(id int, upd CategoryUpdate) (category.Category, CascadeResult, error) {
	existing, err := e.categories.GetByID(id)
	if err != nil {
		return category.Category{}, CascadeResult{}, err
	}

	if upd.Name != nil {
		if name := strings.TrimSpace(*upd.Name); name != existing.Name {
			if other, err := e.categories.GetByName(name); err == nil && other.ID != id {
				return category.Category{}, CascadeResult{}, category.ErrNameExists
			} else if err != nil && err != category.ErrNotFound {
				return category.Category{}, CascadeResult{}, err
			}
			existing.Name = name
		}
	}
	if upd.Description != nil {
		existing.Description = upd.Description
	}

	deactivating := upd.Active != nil && existing.Active && !*upd.Active
	if upd.Active != nil && !deactivating {
		existing.Active = *upd.Active
	}
	existing.UpdatedAt = now()

	updated, err := e.categories.Update(id, existing)
	if err != nil {
		return category.Category{}, CascadeResult{}, err
	}

	if !deactivating {
		return updated, CascadeResult{}, nil
	}
	result, err := e.repo.DeactivateCategoryTree(id)
	if err != nil {
		return category.Category{}, CascadeResult{}, err
	}
	updated.Active = false
	return updated, result, nil
}

// ToggleCategory flips the active flag. Deactivation cascades to every
// subcategory and product below in one transaction; activation is local and
// never cascades.
func (e *Engine) ToggleCategory(id int) (category.Category, CascadeResult, error) {
	cat, err := e.categories.GetByID(id)
	if err != nil {
		return category.Category{}, CascadeResult{}, err
	}

	if cat.Active {
		result, err := e.repo.DeactivateCategoryTree(id)
		if err != nil {
			return category.Category{}, CascadeResult{}, err
		}
		cat.Active = false
		return cat, result, nil
	}

	if err := e.categories.SetActive(id, true); err != nil {
		return category.Category{}, CascadeResult{}, err
	}
	cat.Active = true
	return cat, CascadeResult{}, nil
}

// DeleteCategory hard-deletes only when nothing references the category.
func (e *Engine) DeleteCategory(id int) error {
	if _, err := e.categories.GetByID(id); err != nil {
		return err
	}
	subs, prods, err := e.repo.CategoryDependents(id)
	if err != nil {
		return err
	}
	if subs > 0 || prods > 0 {
		return &DependentsError{Entity: "category", Subcategories: subs, Products: prods}
	}
	return e.categories.Delete(id)
}

func (e *Engine) CategoryStats(id int) (category.Category, Stats, error) {
	cat, err := e.categories.GetByID(id)
	if err != nil {
		return category.Category{}, Stats{}, err
	}
	stats, err := e.repo.CategoryStats(id)
	if err != nil {
		return category.Category{}, Stats{}, err
	}
	return cat, stats, nil
}

// ---- subcategories --------------------------------------------------------

// CreateSubcategory refuses to attach to a missing or inactive category.
// Existing rows are never re-validated retroactively.
func (e *Engine) CreateSubcategory(name string, description *string, categoryID int) (subcategory.Subcategory, error) {
	name = strings.TrimSpace(name)
	parent, err := e.categories.GetByID(categoryID)
	if err != nil {
		return subcategory.Subcategory{}, err
	}
	if !parent.Active {
		return subcategory.Subcategory{}, ErrCategoryInactive
	}

	if _, err := e.subcategories.GetByName(categoryID, name); err == nil {
		return subcategory.Subcategory{}, subcategory.ErrNameExists
	} else if err != subcategory.ErrNotFound {
		return subcategory.Subcategory{}, err
	}

	ts := now()
	return e.subcategories.Create(subcategory.Subcategory{
		Name:        name,
		Description: description,
		CategoryID:  categoryID,
		Active:      true,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
}

type SubcategoryUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *int    `json:"categoryId"`
	Active      *bool   `json:"active"`
}

func (e *Engine) UpdateSubcategory(id int, upd SubcategoryUpdate) (subcategory.Subcategory, CascadeResult, error) {
	existing, err := e.subcategories.GetByID(id)
	if err != nil {
		return subcategory.Subcategory{}, CascadeResult{}, err
	}

	moved := false
	if upd.CategoryID != nil && *upd.CategoryID != existing.CategoryID {
		parent, err := e.categories.GetByID(*upd.CategoryID)
		if err != nil {
			return subcategory.Subcategory{}, CascadeResult{}, err
		}
		if !parent.Active {
			return subcategory.Subcategory{}, CascadeResult{}, ErrCategoryInactive
		}
		existing.CategoryID = *upd.CategoryID
		moved = true
	}
	renamed := false
	if upd.Name != nil {
		if name := strings.TrimSpace(*upd.Name); name != existing.Name {
			existing.Name = name
			renamed = true
		}
	}
	// Uniqueness is per category, so a plain move can collide just as a
	// rename can.
	if moved || renamed {
		if other, err := e.subcategories.GetByName(existing.CategoryID, existing.Name); err == nil && other.ID != id {
			return subcategory.Subcategory{}, CascadeResult{}, subcategory.ErrNameExists
		} else if err != nil && err != subcategory.ErrNotFound {
			return subcategory.Subcategory{}, CascadeResult{}, err
		}
	}
	if upd.Description != nil {
		existing.Description = upd.Description
	}

	deactivating := upd.Active != nil && existing.Active && !*upd.Active
	if upd.Active != nil && !deactivating {
		existing.Active = *upd.Active
	}
	existing.UpdatedAt = now()

	updated, err := e.subcategories.Update(id, existing)
	if err != nil {
		return subcategory.Subcategory{}, CascadeResult{}, err
	}

	if !deactivating {
		return updated, CascadeResult{}, nil
	}
	result, err := e.repo.DeactivateSubcategoryTree(id)
	if err != nil {
		return subcategory.Subcategory{}, CascadeResult{}, err
	}
	updated.Active = false
	return updated, result, nil
}

// ToggleSubcategory deactivates the subcategory's products with it;
// activation never cascades, in either direction.
func (e *Engine) ToggleSubcategory(id int) (subcategory.Subcategory, CascadeResult, error) {
	sc, err := e.subcategories.GetByID(id)
	if err != nil {
		return subcategory.Subcategory{}, CascadeResult{}, err
	}

	if sc.Active {
		result, err := e.repo.DeactivateSubcategoryTree(id)
		if err != nil {
			return subcategory.Subcategory{}, CascadeResult{}, err
		}
		sc.Active = false
		return sc, result, nil
	}

	if err := e.subcategories.SetActive(id, true); err != nil {
		return subcategory.Subcategory{}, CascadeResult{}, err
	}
	sc.Active = true
	return sc, CascadeResult{}, nil
}

func (e *Engine) DeleteSubcategory(id int) error {
	if _, err := e.subcategories.GetByID(id); err != nil {
		return err
	}
	prods, err := e.repo.SubcategoryDependents(id)
	if err != nil {
		return err
	}
	if prods > 0 {
		return &DependentsError{Entity: "subcategory", Products: prods}
	}
	return e.subcategories.Delete(id)
}

func (e *Engine) SubcategoryStats(id int) (subcategory.Subcategory, Stats, error) {
	sc, err := e.subcategories.GetByID(id)
	if err != nil {
		return subcategory.Subcategory{}, Stats{}, err
	}
	stats, err := e.repo.SubcategoryStats(id)
	if err != nil {
		return subcategory.Subcategory{}, Stats{}, err
	}
	return sc, stats, nil
}

// ---- products -------------------------------------------------------------

// CreateProduct verifies the whole parent chain: subcategory and category
// must exist and be active, and the subcategory must belong to the given
// category.
func (e *Engine) CreateProduct(p product.Product) (product.Product, error) {
	sc, err := e.subcategories.GetByID(p.SubcategoryID)
	if err != nil {
		return product.Product{}, err
	}
	if !sc.Active {
		return product.Product{}, ErrSubcategoryInactive
	}

	cat, err := e.categories.GetByID(p.CategoryID)
	if err != nil {
		return product.Product{}, err
	}
	if !cat.Active {
		return product.Product{}, ErrCategoryInactive
	}

	if sc.CategoryID != p.CategoryID {
		return product.Product{}, ErrCategoryMismatch
	}

	ts := now()
	p.Active = true
	p.CreatedAt = ts
	p.UpdatedAt = ts
	return e.products.Create(p)
}

type ProductUpdate struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Stock         *int     `json:"stock"`
	SubcategoryID *int     `json:"subcategoryId"`
	CategoryID    *int     `json:"categoryId"`
	Active        *bool    `json:"active"`
}

func (e *Engine) UpdateProduct(id int, upd ProductUpdate) (product.Product, error) {
	existing, err := e.products.GetByID(id)
	if err != nil {
		return product.Product{}, err
	}

	if upd.Name != nil {
		existing.Name = *upd.Name
	}
	if upd.Description != nil {
		existing.Description = upd.Description
	}
	if upd.Price != nil {
		existing.Price = *upd.Price
	}
	if upd.Stock != nil {
		existing.Stock = *upd.Stock
	}
	if upd.SubcategoryID != nil {
		existing.SubcategoryID = *upd.SubcategoryID
	}
	if upd.CategoryID != nil {
		existing.CategoryID = *upd.CategoryID
	}
	if upd.Active != nil {
		existing.Active = *upd.Active
	}

	if errs := product.Validate(existing); len(errs) > 0 {
		return product.Product{}, &ValidationError{Problems: errs}
	}

	// Re-run the parent chain checks whenever the product moves.
	if upd.SubcategoryID != nil || upd.CategoryID != nil {
		sc, err := e.subcategories.GetByID(existing.SubcategoryID)
		if err != nil {
			return product.Product{}, err
		}
		if !sc.Active {
			return product.Product{}, ErrSubcategoryInactive
		}
		if sc.CategoryID != existing.CategoryID {
			return product.Product{}, ErrCategoryMismatch
		}
	}

	existing.UpdatedAt = now()
	return e.products.Update(id, existing)
}

// ToggleProduct is local; products have no children to cascade into.
func (e *Engine) ToggleProduct(id int) (product.Product, error) {
	p, err := e.products.GetByID(id)
	if err != nil {
		return product.Product{}, err
	}
	if err := e.products.SetActive(id, !p.Active); err != nil {
		return product.Product{}, err
	}
	p.Active = !p.Active
	return p, nil
}

// DeleteProduct refuses while order lines reference the product, and returns
// the removed product so the caller can clean up its image file.
func (e *Engine) DeleteProduct(id int) (product.Product, error) {
	p, err := e.products.GetByID(id)
	if err != nil {
		return product.Product{}, err
	}
	lines, err := e.repo.ProductDependents(id)
	if err != nil {
		return product.Product{}, err
	}
	if lines > 0 {
		return product.Product{}, &DependentsError{Entity: "product", OrderLines: lines}
	}
	if err := e.products.Delete(id); err != nil {
		return product.Product{}, err
	}
	return p, nil
}

// SetProductImage records the stored filename and returns the previous one
// so the handler can remove the replaced file.
func (e *Engine) SetProductImage(id int, filename string) (product.Product, string, error) {
	existing, err := e.products.GetByID(id)
	if err != nil {
		return product.Product{}, "", err
	}
	previous := ""
	if existing.Image != nil {
		previous = *existing.Image
	}
	existing.Image = &filename
	existing.UpdatedAt = now()
	updated, err := e.products.Update(id, existing)
	if err != nil {
		return product.Product{}, "", err
	}
	return updated, previous, nil
}

// ValidationError aggregates per-field messages for a 400 response.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Problems[0]
}
