package catalog

import (
	"database/sql"

	"github.com/tienda-labs/ecommerce-backend/internal/category"
	"github.com/tienda-labs/ecommerce-backend/internal/subcategory"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	deactivateCategoryQuery       = `UPDATE categories SET active = FALSE, updated_at = now() WHERE id = $1`
	deactivateSubsByCategoryQuery = `UPDATE subcategories SET active = FALSE, updated_at = now() WHERE category_id = $1`
	deactivateProdsByCategory     = `UPDATE products SET active = FALSE, updated_at = now() WHERE category_id = $1`

	deactivateSubcategoryQuery   = `UPDATE subcategories SET active = FALSE, updated_at = now() WHERE id = $1`
	deactivateProdsBySubcategory = `UPDATE products SET active = FALSE, updated_at = now() WHERE subcategory_id = $1`

	countSubsByCategoryQuery  = `SELECT COUNT(*) FROM subcategories WHERE category_id = $1`
	countProdsByCategoryQuery = `SELECT COUNT(*) FROM products WHERE category_id = $1`
	countProdsBySubQuery      = `SELECT COUNT(*) FROM products WHERE subcategory_id = $1`
	countLinesByProductQuery  = `SELECT COUNT(*) FROM order_lines WHERE product_id = $1`

	categoryStatsQuery = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE active),
			COALESCE(SUM(stock), 0),
			COALESCE(SUM(price * stock), 0)
		FROM products
		WHERE category_id = $1
	`
	subcategoryStatsQuery = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE active),
			COALESCE(SUM(stock), 0),
			COALESCE(SUM(price * stock), 0)
		FROM products
		WHERE subcategory_id = $1
	`
	subcategoryCountsQuery = `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE active)
		FROM subcategories
		WHERE category_id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// DeactivateCategoryTree runs the whole cascade inside one transaction so a
// failure anywhere leaves every row untouched.
func (r *PostgresRepository) DeactivateCategoryTree(categoryID int) (CascadeResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return CascadeResult{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.Exec(deactivateCategoryQuery, categoryID)
	if err != nil {
		return CascadeResult{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return CascadeResult{}, err
	}
	if affected == 0 {
		return CascadeResult{}, category.ErrNotFound
	}

	out := CascadeResult{}
	result, err = tx.Exec(deactivateSubsByCategoryQuery, categoryID)
	if err != nil {
		return CascadeResult{}, err
	}
	if n, err := result.RowsAffected(); err == nil {
		out.Subcategories = int(n)
	}

	result, err = tx.Exec(deactivateProdsByCategory, categoryID)
	if err != nil {
		return CascadeResult{}, err
	}
	if n, err := result.RowsAffected(); err == nil {
		out.Products = int(n)
	}

	if err := tx.Commit(); err != nil {
		return CascadeResult{}, err
	}
	return out, nil
}

func (r *PostgresRepository) DeactivateSubcategoryTree(subcategoryID int) (CascadeResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return CascadeResult{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.Exec(deactivateSubcategoryQuery, subcategoryID)
	if err != nil {
		return CascadeResult{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return CascadeResult{}, err
	}
	if affected == 0 {
		return CascadeResult{}, subcategory.ErrNotFound
	}

	out := CascadeResult{}
	result, err = tx.Exec(deactivateProdsBySubcategory, subcategoryID)
	if err != nil {
		return CascadeResult{}, err
	}
	if n, err := result.RowsAffected(); err == nil {
		out.Products = int(n)
	}

	if err := tx.Commit(); err != nil {
		return CascadeResult{}, err
	}
	return out, nil
}

func (r *PostgresRepository) CategoryDependents(categoryID int) (int, int, error) {
	var subs, prods int
	if err := r.db.QueryRow(countSubsByCategoryQuery, categoryID).Scan(&subs); err != nil {
		return 0, 0, err
	}
	if err := r.db.QueryRow(countProdsByCategoryQuery, categoryID).Scan(&prods); err != nil {
		return 0, 0, err
	}
	return subs, prods, nil
}

func (r *PostgresRepository) SubcategoryDependents(subcategoryID int) (int, error) {
	var prods int
	if err := r.db.QueryRow(countProdsBySubQuery, subcategoryID).Scan(&prods); err != nil {
		return 0, err
	}
	return prods, nil
}

func (r *PostgresRepository) ProductDependents(productID int) (int, error) {
	var lines int
	if err := r.db.QueryRow(countLinesByProductQuery, productID).Scan(&lines); err != nil {
		return 0, err
	}
	return lines, nil
}

func (r *PostgresRepository) CategoryStats(categoryID int) (Stats, error) {
	stats := Stats{}

	var subs StatusCount
	if err := r.db.QueryRow(subcategoryCountsQuery, categoryID).Scan(&subs.Total, &subs.Active); err != nil {
		return Stats{}, err
	}
	subs.Inactive = subs.Total - subs.Active
	stats.Subcategories = &subs

	if err := r.db.QueryRow(categoryStatsQuery, categoryID).Scan(
		&stats.Products.Total,
		&stats.Products.Active,
		&stats.StockTotal,
		&stats.InventoryValue,
	); err != nil {
		return Stats{}, err
	}
	stats.Products.Inactive = stats.Products.Total - stats.Products.Active
	return stats, nil
}

func (r *PostgresRepository) SubcategoryStats(subcategoryID int) (Stats, error) {
	stats := Stats{}
	if err := r.db.QueryRow(subcategoryStatsQuery, subcategoryID).Scan(
		&stats.Products.Total,
		&stats.Products.Active,
		&stats.StockTotal,
		&stats.InventoryValue,
	); err != nil {
		return Stats{}, err
	}
	stats.Products.Inactive = stats.Products.Total - stats.Products.Active
	return stats, nil
}
