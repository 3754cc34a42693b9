package cart

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listCartByUserQuery = `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.unit_price,
			ci.created_at, ci.updated_at, p.name, p.image
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.id
	`
	getCartItemByIDQuery = `
		SELECT id, user_id, product_id, quantity, unit_price, created_at, updated_at
		FROM cart_items
		WHERE id = $1
	`
	getCartItemByUserProductQuery = `
		SELECT id, user_id, product_id, quantity, unit_price, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`
	insertCartItemQuery = `
		INSERT INTO cart_items (user_id, product_id, quantity, unit_price, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`
	updateCartQuantityQuery = `
		UPDATE cart_items
		SET quantity = $1, updated_at = $2
		WHERE id = $3
	`
	deleteCartItemQuery = `DELETE FROM cart_items WHERE id = $1`
	clearCartQuery      = `DELETE FROM cart_items WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(userID int) ([]CartItem, error) {
	rows, err := r.db.Query(listCartByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CartItem, 0)
	for rows.Next() {
		var (
			item      CartItem
			createdAt sql.NullString
			updatedAt sql.NullString
			image     sql.NullString
		)
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&createdAt,
			&updatedAt,
			&item.ProductName,
			&image,
		); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			item.CreatedAt = createdAt.String
		}
		if updatedAt.Valid {
			item.UpdatedAt = updatedAt.String
		}
		if image.Valid {
			item.ProductImage = &image.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (CartItem, error) {
	item, err := scanCartItem(r.db.QueryRow(getCartItemByIDQuery, id))
	if err == sql.ErrNoRows {
		return CartItem{}, ErrNotFound
	}
	return item, err
}

func (r *PostgresRepository) GetByUserAndProduct(userID int, productID int) (CartItem, error) {
	item, err := scanCartItem(r.db.QueryRow(getCartItemByUserProductQuery, userID, productID))
	if err == sql.ErrNoRows {
		return CartItem{}, ErrNotFound
	}
	return item, err
}

func (r *PostgresRepository) Create(item CartItem) (CartItem, error) {
	var id int
	err := r.db.QueryRow(
		insertCartItemQuery,
		item.UserID,
		item.ProductID,
		item.Quantity,
		item.UnitPrice,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return CartItem{}, err
	}
	item.ID = id
	return item, nil
}

func (r *PostgresRepository) UpdateQuantity(id int, quantity int, updatedAt string) (CartItem, error) {
	result, err := r.db.Exec(updateCartQuantityQuery, quantity, updatedAt, id)
	if err != nil {
		return CartItem{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return CartItem{}, err
	}
	if affected == 0 {
		return CartItem{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteCartItemQuery, id)
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

func (r *PostgresRepository) Clear(userID int) error {
	_, err := r.db.Exec(clearCartQuery, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCartItem(scanner rowScanner) (CartItem, error) {
	item := CartItem{}
	var (
		createdAt sql.NullString
		updatedAt sql.NullString
	)
	if err := scanner.Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitPrice,
		&createdAt,
		&updatedAt,
	); err != nil {
		return CartItem{}, err
	}
	if createdAt.Valid {
		item.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		item.UpdatedAt = updatedAt.String
	}
	return item, nil
}
