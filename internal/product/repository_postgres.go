package product

import (
	"database/sql"
	"strconv"
	"strings"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `id, name, description, price, stock, image, subcategory_id, category_id, active, created_at, updated_at`

	getProductByIDQuery = `
		SELECT id, name, description, price, stock, image, subcategory_id, category_id, active, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	insertProductQuery = `
		INSERT INTO products (name, description, price, stock, image, subcategory_id, category_id, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			description = $2,
			price = $3,
			stock = $4,
			image = $5,
			subcategory_id = $6,
			category_id = $7,
			active = $8,
			updated_at = $9
		WHERE id = $10
	`
	deleteProductQuery    = `DELETE FROM products WHERE id = $1`
	setProductActiveQuery = `UPDATE products SET active = $1, updated_at = now() WHERE id = $2`

	// The condition makes the check-then-decrement a single atomic statement
	// so concurrent checkouts cannot oversell.
	reduceStockQuery = `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
	`
	increaseStockQuery = `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1
	`
	stockSnapshotQuery = `SELECT name, stock FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(filter ListFilter) ([]Product, int, error) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, "category_id = $"+strconv.Itoa(len(args)))
	}
	if filter.SubcategoryID != nil {
		args = append(args, *filter.SubcategoryID)
		conds = append(conds, "subcategory_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, "active = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, "name ILIKE $"+strconv.Itoa(len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY name`
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
		args = append(args, (page-1)*filter.Limit)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByIDQuery, id))
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	var id int
	err := r.db.QueryRow(
		insertProductQuery,
		p.Name,
		p.Description,
		p.Price,
		p.Stock,
		p.Image,
		p.SubcategoryID,
		p.CategoryID,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Product{}, err
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	result, err := r.db.Exec(
		updateProductQuery,
		p.Name,
		p.Description,
		p.Price,
		p.Stock,
		p.Image,
		p.SubcategoryID,
		p.CategoryID,
		p.Active,
		p.UpdatedAt,
		id,
	)
	if err != nil {
		return Product{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SetActive(id int, active bool) error {
	result, err := r.db.Exec(setProductActiveQuery, active, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ReduceStock(id int, quantity int) error {
	result, err := r.db.Exec(reduceStockQuery, id, quantity)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Zero rows: either the product is gone or the stock ran short.
	var (
		name  string
		stock int
	)
	if err := r.db.QueryRow(stockSnapshotQuery, id).Scan(&name, &stock); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return &InsufficientStockError{ProductID: id, Name: name, Stock: stock, Requested: quantity}
}

func (r *PostgresRepository) IncreaseStock(id int, quantity int) error {
	result, err := r.db.Exec(increaseStockQuery, id, quantity)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var (
		description sql.NullString
		image       sql.NullString
		createdAt   sql.NullString
		updatedAt   sql.NullString
	)
	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&description,
		&p.Price,
		&p.Stock,
		&image,
		&p.SubcategoryID,
		&p.CategoryID,
		&p.Active,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Product{}, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	if image.Valid {
		p.Image = &image.String
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.String
	}
	return p, nil
}
