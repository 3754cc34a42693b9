package order

import (
	"database/sql"
	"strconv"

	"github.com/lib/pq"

	"github.com/tienda-labs/ecommerce-backend/internal/product"
)

const (
	selectCartForCheckoutQuery = `SELECT ci.product_id, ci.quantity, ci.unit_price, p.name, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.id`

	reduceStockForLineQuery = `UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`

	insertOrderQuery = `INSERT INTO orders (user_id, total, status, shipping_address, phone, notes)
		VALUES ($1, $2, 'pending', $3, $4, $5)
		RETURNING id, user_id, total, status, shipping_address, phone, notes,
			paid_at, shipped_at, delivered_at, created_at, updated_at`

	insertOrderLineQuery = `INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	clearCartQuery = "DELETE FROM cart_items WHERE user_id = $1"

	getOrderQuery = `SELECT id, user_id, total, status, shipping_address, phone, notes,
			paid_at, shipped_at, delivered_at, created_at, updated_at
		FROM orders WHERE id = $1`

	listLinesQuery = `SELECT ol.id, ol.order_id, ol.product_id, ol.quantity, ol.unit_price, ol.subtotal, p.name
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id = ANY($1::int[])
		ORDER BY ol.order_id, ol.id`

	setStatusQuery = `UPDATE orders SET status = $2,
			paid_at = CASE WHEN $2 = 'paid' THEN COALESCE(paid_at, now()) ELSE paid_at END,
			shipped_at = CASE WHEN $2 = 'shipped' THEN COALESCE(shipped_at, now()) ELSE shipped_at END,
			delivered_at = CASE WHEN $2 = 'delivered' THEN COALESCE(delivered_at, now()) ELSE delivered_at END,
			updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING id, user_id, total, status, shipping_address, phone, notes,
			paid_at, shipped_at, delivered_at, created_at, updated_at`

	orderStatusQuery = "SELECT status FROM orders WHERE id = $1"

	lockOrderQuery = "SELECT status FROM orders WHERE id = $1 FOR UPDATE"

	restoreStockQuery = `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`

	cancelOrderQuery = `UPDATE orders SET status = 'cancelled', updated_at = now() WHERE id = $1
		RETURNING id, user_id, total, status, shipping_address, phone, notes,
			paid_at, shipped_at, delivered_at, created_at, updated_at`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	var notes, paidAt, shippedAt, deliveredAt sql.NullString
	var createdAt, updatedAt sql.NullString
	err := row.Scan(&ord.ID, &ord.UserID, &ord.Total, &ord.Status, &ord.ShippingAddress,
		&ord.Phone, &notes, &paidAt, &shippedAt, &deliveredAt, &createdAt, &updatedAt)
	if err != nil {
		return Order{}, err
	}
	if notes.Valid {
		ord.Notes = &notes.String
	}
	if paidAt.Valid {
		ord.PaidAt = &paidAt.String
	}
	if shippedAt.Valid {
		ord.ShippedAt = &shippedAt.String
	}
	if deliveredAt.Valid {
		ord.DeliveredAt = &deliveredAt.String
	}
	ord.CreatedAt = createdAt.String
	ord.UpdatedAt = updatedAt.String
	return ord, nil
}

type checkoutLine struct {
	productID int
	quantity  int
	unitPrice float64
	name      string
	stock     int
}

func (r *PostgresRepository) Checkout(userID int, shippingAddress string, phone string, notes *string) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(selectCartForCheckoutQuery, userID)
	if err != nil {
		return Order{}, err
	}
	var lines []checkoutLine
	for rows.Next() {
		var line checkoutLine
		if err := rows.Scan(&line.productID, &line.quantity, &line.unitPrice, &line.name, &line.stock); err != nil {
			rows.Close()
			return Order{}, err
		}
		lines = append(lines, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Order{}, err
	}
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	var total float64
	for _, line := range lines {
		result, err := tx.Exec(reduceStockForLineQuery, line.productID, line.quantity)
		if err != nil {
			return Order{}, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return Order{}, err
		}
		if affected == 0 {
			return Order{}, &product.InsufficientStockError{
				ProductID: line.productID, Name: line.name, Stock: line.stock, Requested: line.quantity,
			}
		}
		total += line.unitPrice * float64(line.quantity)
	}

	ord, err := scanOrder(tx.QueryRow(insertOrderQuery, userID, total, shippingAddress, phone, notes))
	if err != nil {
		return Order{}, err
	}

	for _, line := range lines {
		subtotal := line.unitPrice * float64(line.quantity)
		ol := OrderLine{
			OrderID:     ord.ID,
			ProductID:   line.productID,
			Quantity:    line.quantity,
			UnitPrice:   line.unitPrice,
			Subtotal:    subtotal,
			ProductName: line.name,
		}
		err := tx.QueryRow(insertOrderLineQuery, ord.ID, line.productID, line.quantity, line.unitPrice, subtotal).Scan(&ol.ID)
		if err != nil {
			return Order{}, err
		}
		ord.Lines = append(ord.Lines, ol)
	}

	if _, err := tx.Exec(clearCartQuery, userID); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(getOrderQuery, id))
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	lines, err := r.loadLines([]int{ord.ID})
	if err != nil {
		return Order{}, err
	}
	ord.Lines = lines[ord.ID]
	return ord, nil
}

func (r *PostgresRepository) ListByUser(userID int, status *Status) ([]Order, error) {
	query := `SELECT id, user_id, total, status, shipping_address, phone, notes,
			paid_at, shipped_at, delivered_at, created_at, updated_at
		FROM orders WHERE user_id = $1`
	args := []interface{}{userID}
	if status != nil {
		args = append(args, string(*status))
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, ord)
		ids = append(ids, ord.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	lines, err := r.loadLines(ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

func (r *PostgresRepository) loadLines(orderIDs []int) (map[int][]OrderLine, error) {
	rows, err := r.db.Query(listLinesQuery, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make(map[int][]OrderLine)
	for rows.Next() {
		var line OrderLine
		err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity,
			&line.UnitPrice, &line.Subtotal, &line.ProductName)
		if err != nil {
			return nil, err
		}
		lines[line.OrderID] = append(lines[line.OrderID], line)
	}
	return lines, rows.Err()
}

func (r *PostgresRepository) SetStatus(id int, from Status, to Status) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(setStatusQuery, id, string(to), string(from)))
	if err == sql.ErrNoRows {
		// no row matched: either the order is gone or its status moved
		// under us after the caller validated the transition
		var current string
		if err := r.db.QueryRow(orderStatusQuery, id).Scan(&current); err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		} else if err != nil {
			return Order{}, err
		}
		return Order{}, ErrInvalidTransition
	}
	if err != nil {
		return Order{}, err
	}
	lines, err := r.loadLines([]int{ord.ID})
	if err != nil {
		return Order{}, err
	}
	ord.Lines = lines[ord.ID]
	return ord, nil
}

func (r *PostgresRepository) Cancel(id int) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow(lockOrderQuery, id).Scan(&current)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if !Status(current).Cancellable() {
		return Order{}, ErrNotCancellable
	}

	rows, err := tx.Query("SELECT product_id, quantity FROM order_lines WHERE order_id = $1", id)
	if err != nil {
		return Order{}, err
	}
	type restore struct {
		productID int
		quantity  int
	}
	var restores []restore
	for rows.Next() {
		var item restore
		if err := rows.Scan(&item.productID, &item.quantity); err != nil {
			rows.Close()
			return Order{}, err
		}
		restores = append(restores, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Order{}, err
	}

	for _, item := range restores {
		if _, err := tx.Exec(restoreStockQuery, item.productID, item.quantity); err != nil {
			return Order{}, err
		}
	}

	ord, err := scanOrder(tx.QueryRow(cancelOrderQuery, id))
	if err != nil {
		return Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return Order{}, err
	}

	lines, err := r.loadLines([]int{ord.ID})
	if err != nil {
		return Order{}, err
	}
	ord.Lines = lines[ord.ID]
	return ord, nil
}
