package subcategory

import (
	"database/sql"
	"strconv"
	"strings"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	subcategoryColumns = `id, name, description, category_id, active, created_at, updated_at`

	getSubcategoryByIDQuery = `
		SELECT id, name, description, category_id, active, created_at, updated_at
		FROM subcategories
		WHERE id = $1
	`
	getSubcategoryByNameQuery = `
		SELECT id, name, description, category_id, active, created_at, updated_at
		FROM subcategories
		WHERE category_id = $1 AND name = $2
	`
	insertSubcategoryQuery = `
		INSERT INTO subcategories (name, description, category_id, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`
	updateSubcategoryQuery = `
		UPDATE subcategories
		SET name = $1,
			description = $2,
			category_id = $3,
			active = $4,
			updated_at = $5
		WHERE id = $6
	`
	deleteSubcategoryQuery    = `DELETE FROM subcategories WHERE id = $1`
	setSubcategoryActiveQuery = `UPDATE subcategories SET active = $1, updated_at = now() WHERE id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(categoryID *int, active *bool) ([]Subcategory, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + subcategoryColumns + ` FROM subcategories`)

	conds := make([]string, 0, 2)
	if categoryID != nil {
		args = append(args, *categoryID)
		conds = append(conds, "category_id = $"+strconv.Itoa(len(args)))
	}
	if active != nil {
		args = append(args, *active)
		conds = append(conds, "active = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	query.WriteString(" ORDER BY name")

	rows, err := r.db.Query(query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Subcategory, 0)
	for rows.Next() {
		sc, err := scanSubcategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Subcategory, error) {
	sc, err := scanSubcategory(r.db.QueryRow(getSubcategoryByIDQuery, id))
	if err == sql.ErrNoRows {
		return Subcategory{}, ErrNotFound
	}
	return sc, err
}

func (r *PostgresRepository) GetByName(categoryID int, name string) (Subcategory, error) {
	sc, err := scanSubcategory(r.db.QueryRow(getSubcategoryByNameQuery, categoryID, name))
	if err == sql.ErrNoRows {
		return Subcategory{}, ErrNotFound
	}
	return sc, err
}

func (r *PostgresRepository) Create(sc Subcategory) (Subcategory, error) {
	var id int
	err := r.db.QueryRow(
		insertSubcategoryQuery,
		sc.Name,
		sc.Description,
		sc.CategoryID,
		sc.Active,
		sc.CreatedAt,
		sc.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Subcategory{}, err
	}
	sc.ID = id
	return sc, nil
}

func (r *PostgresRepository) Update(id int, sc Subcategory) (Subcategory, error) {
	result, err := r.db.Exec(
		updateSubcategoryQuery,
		sc.Name,
		sc.Description,
		sc.CategoryID,
		sc.Active,
		sc.UpdatedAt,
		id,
	)
	if err != nil {
		return Subcategory{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Subcategory{}, err
	}
	if affected == 0 {
		return Subcategory{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteSubcategoryQuery, id)
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
	result, err := r.db.Exec(setSubcategoryActiveQuery, active, id)
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

func scanSubcategory(scanner rowScanner) (Subcategory, error) {
	sc := Subcategory{}
	var (
		description sql.NullString
		createdAt   sql.NullString
		updatedAt   sql.NullString
	)
	if err := scanner.Scan(
		&sc.ID,
		&sc.Name,
		&description,
		&sc.CategoryID,
		&sc.Active,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Subcategory{}, err
	}
	if description.Valid {
		sc.Description = &description.String
	}
	if createdAt.Valid {
		sc.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		sc.UpdatedAt = updatedAt.String
	}
	return sc, nil
}
