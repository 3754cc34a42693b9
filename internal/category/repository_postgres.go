package category

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listCategoriesQuery = `
		SELECT id, name, description, active, created_at, updated_at
		FROM categories
		ORDER BY name
	`
	listCategoriesByActiveQuery = `
		SELECT id, name, description, active, created_at, updated_at
		FROM categories
		WHERE active = $1
		ORDER BY name
	`
	getCategoryByIDQuery = `
		SELECT id, name, description, active, created_at, updated_at
		FROM categories
		WHERE id = $1
	`
	getCategoryByNameQuery = `
		SELECT id, name, description, active, created_at, updated_at
		FROM categories
		WHERE name = $1
	`
	insertCategoryQuery = `
		INSERT INTO categories (name, description, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`
	updateCategoryQuery = `
		UPDATE categories
		SET name = $1,
			description = $2,
			active = $3,
			updated_at = $4
		WHERE id = $5
	`
	deleteCategoryQuery    = `DELETE FROM categories WHERE id = $1`
	setCategoryActiveQuery = `UPDATE categories SET active = $1, updated_at = now() WHERE id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(active *bool) ([]Category, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if active != nil {
		rows, err = r.db.Query(listCategoriesByActiveQuery, *active)
	} else {
		rows, err = r.db.Query(listCategoriesQuery)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Category, error) {
	cat, err := scanCategory(r.db.QueryRow(getCategoryByIDQuery, id))
	if err == sql.ErrNoRows {
		return Category{}, ErrNotFound
	}
	return cat, err
}

func (r *PostgresRepository) GetByName(name string) (Category, error) {
	cat, err := scanCategory(r.db.QueryRow(getCategoryByNameQuery, name))
	if err == sql.ErrNoRows {
		return Category{}, ErrNotFound
	}
	return cat, err
}

func (r *PostgresRepository) Create(cat Category) (Category, error) {
	var id int
	err := r.db.QueryRow(
		insertCategoryQuery,
		cat.Name,
		cat.Description,
		cat.Active,
		cat.CreatedAt,
		cat.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Category{}, err
	}
	cat.ID = id
	return cat, nil
}

func (r *PostgresRepository) Update(id int, cat Category) (Category, error) {
	result, err := r.db.Exec(
		updateCategoryQuery,
		cat.Name,
		cat.Description,
		cat.Active,
		cat.UpdatedAt,
		id,
	)
	if err != nil {
		return Category{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Category{}, err
	}
	if affected == 0 {
		return Category{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteCategoryQuery, id)
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
	result, err := r.db.Exec(setCategoryActiveQuery, active, id)
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

func scanCategory(scanner rowScanner) (Category, error) {
	cat := Category{}
	var (
		description sql.NullString
		createdAt   sql.NullString
		updatedAt   sql.NullString
	)
	if err := scanner.Scan(
		&cat.ID,
		&cat.Name,
		&description,
		&cat.Active,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Category{}, err
	}
	if description.Valid {
		cat.Description = &description.String
	}
	if createdAt.Valid {
		cat.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		cat.UpdatedAt = updatedAt.String
	}
	return cat, nil
}
