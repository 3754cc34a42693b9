package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tienda-labs/ecommerce-backend/internal/category"
	"github.com/tienda-labs/ecommerce-backend/internal/product"
	"github.com/tienda-labs/ecommerce-backend/internal/subcategory"
)

type fixture struct {
	engine        *Engine
	categories    *category.InMemoryRepository
	subcategories *subcategory.InMemoryRepository
	products      *product.InMemoryRepository
	repo          *InMemoryRepository
}

// newFixture seeds one active category (1) with one subcategory (1) holding
// two products, plus an inactive category (2) and an empty subcategory (2).
func newFixture() fixture {
	categories := category.NewInMemoryRepository([]category.Category{
		{ID: 1, Name: "Electronics", Active: true},
		{ID: 2, Name: "Discontinued", Active: false},
		{ID: 3, Name: "Home", Active: true},
	})
	subcategories := subcategory.NewInMemoryRepository([]subcategory.Subcategory{
		{ID: 1, Name: "Phones", CategoryID: 1, Active: true},
		{ID: 2, Name: "Tablets", CategoryID: 1, Active: true},
	})
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Phone A", Price: 199.99, Stock: 10, SubcategoryID: 1, CategoryID: 1, Active: true},
		{ID: 2, Name: "Phone B", Price: 299.99, Stock: 5, SubcategoryID: 1, CategoryID: 1, Active: true},
	})
	repo := NewInMemoryRepository(categories, subcategories, products)
	return fixture{
		engine:        NewEngine(categories, subcategories, products, repo),
		categories:    categories,
		subcategories: subcategories,
		products:      products,
		repo:          repo,
	}
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	f := newFixture()

	_, err := f.engine.CreateCategory("Electronics", nil)
	require.ErrorIs(t, err, category.ErrNameExists)

	created, err := f.engine.CreateCategory("Garden", nil)
	require.NoError(t, err)
	require.True(t, created.Active)
	require.NotZero(t, created.ID)
}

func TestCreateSubcategoryRequiresActiveParent(t *testing.T) {
	f := newFixture()

	_, err := f.engine.CreateSubcategory("Gadgets", nil, 2)
	require.ErrorIs(t, err, ErrCategoryInactive)

	_, err = f.engine.CreateSubcategory("Gadgets", nil, 99)
	require.ErrorIs(t, err, category.ErrNotFound)

	_, err = f.engine.CreateSubcategory("Phones", nil, 1)
	require.ErrorIs(t, err, subcategory.ErrNameExists)

	created, err := f.engine.CreateSubcategory("Gadgets", nil, 1)
	require.NoError(t, err)
	require.Equal(t, 1, created.CategoryID)
}

func TestCreateProductChecksParentChain(t *testing.T) {
	f := newFixture()

	base := product.Product{Name: "Tablet X", Price: 99, Stock: 3, SubcategoryID: 1, CategoryID: 1}

	inactiveParent := base
	inactiveParent.CategoryID = 2
	_, err := f.engine.CreateProduct(inactiveParent)
	require.ErrorIs(t, err, ErrCategoryInactive)

	// subcategory 1 belongs to category 1, not 3
	mismatch := base
	mismatch.CategoryID = 3
	_, err = f.engine.CreateProduct(mismatch)
	require.ErrorIs(t, err, ErrCategoryMismatch)

	missingSub := base
	missingSub.SubcategoryID = 99
	_, err = f.engine.CreateProduct(missingSub)
	require.ErrorIs(t, err, subcategory.ErrNotFound)

	created, err := f.engine.CreateProduct(base)
	require.NoError(t, err)
	require.True(t, created.Active)
}

func TestCategoryDeactivationCascades(t *testing.T) {
	f := newFixture()

	updated, cascade, err := f.engine.ToggleCategory(1)
	require.NoError(t, err)
	require.False(t, updated.Active)
	require.Equal(t, 2, cascade.Subcategories)
	require.Equal(t, 2, cascade.Products)

	for _, id := range []int{1, 2} {
		sc, err := f.subcategories.GetByID(id)
		require.NoError(t, err)
		require.False(t, sc.Active)

		p, err := f.products.GetByID(id)
		require.NoError(t, err)
		require.False(t, p.Active)
	}
}

func TestCategoryActivationDoesNotCascade(t *testing.T) {
	f := newFixture()

	_, _, err := f.engine.ToggleCategory(1)
	require.NoError(t, err)

	updated, cascade, err := f.engine.ToggleCategory(1)
	require.NoError(t, err)
	require.True(t, updated.Active)
	require.Zero(t, cascade.Subcategories)
	require.Zero(t, cascade.Products)

	// children stay inactive until toggled themselves
	sc, err := f.subcategories.GetByID(1)
	require.NoError(t, err)
	require.False(t, sc.Active)
	p, err := f.products.GetByID(1)
	require.NoError(t, err)
	require.False(t, p.Active)
}

func TestUpdateCategoryDeactivationCascades(t *testing.T) {
	f := newFixture()

	inactive := false
	name := "Renamed"
	updated, cascade, err := f.engine.UpdateCategory(1, CategoryUpdate{Name: &name, Active: &inactive})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.False(t, updated.Active)
	require.Equal(t, 2, cascade.Subcategories)
	require.Equal(t, 2, cascade.Products)
}

func TestSubcategoryDeactivationCascadesToProducts(t *testing.T) {
	f := newFixture()

	updated, cascade, err := f.engine.ToggleSubcategory(1)
	require.NoError(t, err)
	require.False(t, updated.Active)
	require.Equal(t, 2, cascade.Products)

	// sibling subcategory untouched
	sc, err := f.subcategories.GetByID(2)
	require.NoError(t, err)
	require.True(t, sc.Active)
	// parent category untouched
	cat, err := f.categories.GetByID(1)
	require.NoError(t, err)
	require.True(t, cat.Active)
}

func TestDeleteBlockedByDependents(t *testing.T) {
	f := newFixture()

	err := f.engine.DeleteCategory(1)
	var depErr *DependentsError
	require.ErrorAs(t, err, &depErr)
	require.Equal(t, "category", depErr.Entity)
	require.Equal(t, 2, depErr.Subcategories)
	require.Equal(t, 2, depErr.Products)

	err = f.engine.DeleteSubcategory(1)
	require.ErrorAs(t, err, &depErr)
	require.Equal(t, "subcategory", depErr.Entity)
	require.Equal(t, 2, depErr.Products)

	// empty subcategory deletes fine
	require.NoError(t, f.engine.DeleteSubcategory(2))

	// empty category deletes fine
	require.NoError(t, f.engine.DeleteCategory(2))
}

func TestDeleteProductBlockedByOrderLines(t *testing.T) {
	f := newFixture()
	f.repo.AddOrderLineRef(1, 3)

	_, err := f.engine.DeleteProduct(1)
	var depErr *DependentsError
	require.ErrorAs(t, err, &depErr)
	require.Equal(t, "product", depErr.Entity)
	require.Equal(t, 3, depErr.OrderLines)

	removed, err := f.engine.DeleteProduct(2)
	require.NoError(t, err)
	require.Equal(t, "Phone B", removed.Name)
	_, err = f.products.GetByID(2)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestUpdateProductValidation(t *testing.T) {
	f := newFixture()

	bad := -1.0
	_, err := f.engine.UpdateProduct(1, ProductUpdate{Price: &bad})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.NotEmpty(t, vErr.Problems)
}

func TestUpdateProductMoveChecksNewParent(t *testing.T) {
	f := newFixture()

	// deactivate the target subcategory first
	_, _, err := f.engine.ToggleSubcategory(2)
	require.NoError(t, err)

	target := 2
	_, err = f.engine.UpdateProduct(1, ProductUpdate{SubcategoryID: &target})
	require.ErrorIs(t, err, ErrSubcategoryInactive)
}

func TestCategoryStats(t *testing.T) {
	f := newFixture()

	_, err := f.engine.ToggleProduct(2)
	require.NoError(t, err)

	_, stats, err := f.engine.CategoryStats(1)
	require.NoError(t, err)
	require.NotNil(t, stats.Subcategories)
	require.Equal(t, 2, stats.Subcategories.Total)
	require.Equal(t, 2, stats.Products.Total)
	require.Equal(t, 1, stats.Products.Active)
	require.Equal(t, 1, stats.Products.Inactive)
	require.Equal(t, 15, stats.StockTotal)
	require.InDelta(t, 199.99*10+299.99*5, stats.InventoryValue, 0.001)
}

func TestSubcategoryStats(t *testing.T) {
	f := newFixture()

	_, stats, err := f.engine.SubcategoryStats(1)
	require.NoError(t, err)
	require.Nil(t, stats.Subcategories)
	require.Equal(t, 2, stats.Products.Total)
	require.Equal(t, 15, stats.StockTotal)
}

func TestCategoryNamesAreTrimmed(t *testing.T) {
	f := newFixture()

	created, err := f.engine.CreateCategory("  Garden  ", nil)
	require.NoError(t, err)
	require.Equal(t, "Garden", created.Name)

	// padding must not sneak past the duplicate check
	_, err = f.engine.CreateCategory(" Electronics ", nil)
	require.ErrorIs(t, err, category.ErrNameExists)

	padded := "  Phones  "
	_, err = f.engine.CreateSubcategory(padded, nil, 1)
	require.ErrorIs(t, err, subcategory.ErrNameExists)

	sc, err := f.engine.CreateSubcategory("  Chargers ", nil, 1)
	require.NoError(t, err)
	require.Equal(t, "Chargers", sc.Name)
}

func TestMoveSubcategoryChecksTargetNames(t *testing.T) {
	f := newFixture()

	created, err := f.engine.CreateSubcategory("Phones", nil, 3)
	require.NoError(t, err)

	// category 1 already owns a "Phones" subcategory
	target := 1
	_, _, err = f.engine.UpdateSubcategory(created.ID, SubcategoryUpdate{CategoryID: &target})
	require.ErrorIs(t, err, subcategory.ErrNameExists)

	// renaming during the move resolves the collision
	renamed := "Landlines"
	moved, _, err := f.engine.UpdateSubcategory(created.ID, SubcategoryUpdate{CategoryID: &target, Name: &renamed})
	require.NoError(t, err)
	require.Equal(t, 1, moved.CategoryID)
	require.Equal(t, "Landlines", moved.Name)
}
