package order

import (
	"sync"
	"time"

	"github.com/tienda-labs/ecommerce-backend/internal/cart"
	"github.com/tienda-labs/ecommerce-backend/internal/product"
)

type Repository interface {
	// Checkout turns the user's cart into a pending order in a single
	// all-or-nothing unit: stock decrements, the order row, its lines and
	// the cart wipe either all land or none do.
	Checkout(userID int, shippingAddress string, phone string, notes *string) (Order, error)
	GetByID(id int) (Order, error)
	// ListByUser returns the user's orders, newest first, with lines loaded.
	ListByUser(userID int, status *Status) ([]Order, error)
	// SetStatus persists the new status and stamps paid_at/shipped_at/
	// delivered_at on first entry only. The update applies only while the
	// order still holds the from status, so validation cannot go stale
	// between the read and the write; ErrInvalidTransition otherwise.
	SetStatus(id int, from Status, to Status) (Order, error)
	// Cancel restores stock from every line and marks the order cancelled,
	// atomically. Fails with ErrNotCancellable outside pending/paid.
	Cancel(id int) (Order, error)
}

// InMemoryRepository implements checkout and cancellation against the
// in-memory cart and product repositories. Test use only; a single caller
// makes the multi-step writes effectively atomic.
type InMemoryRepository struct {
	mu       sync.Mutex
	carts    *cart.InMemoryRepository
	products *product.InMemoryRepository
	storage  []Order
	nextID   int
}

func NewInMemoryRepository(carts *cart.InMemoryRepository, products *product.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{carts: carts, products: products, nextID: 1}
}

func (r *InMemoryRepository) Checkout(userID int, shippingAddress string, phone string, notes *string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.carts.ListByUser(userID)
	if err != nil {
		return Order{}, err
	}
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}

	// Verify the whole cart before mutating anything so a late failure
	// cannot leave a partial order behind.
	for _, item := range items {
		p, err := r.products.GetByID(item.ProductID)
		if err != nil {
			return Order{}, err
		}
		if !p.HasStock(item.Quantity) {
			return Order{}, &product.InsufficientStockError{
				ProductID: p.ID, Name: p.Name, Stock: p.Stock, Requested: item.Quantity,
			}
		}
	}

	ts := time.Now().UTC().Format(time.RFC3339)
	ord := Order{
		ID:              r.nextID,
		UserID:          userID,
		Status:          StatusPending,
		ShippingAddress: shippingAddress,
		Phone:           phone,
		Notes:           notes,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	r.nextID++

	for i, item := range items {
		if err := r.products.ReduceStock(item.ProductID, item.Quantity); err != nil {
			return Order{}, err
		}
		line := OrderLine{
			ID:        i + 1,
			OrderID:   ord.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
		ord.Total += line.Subtotal
		ord.Lines = append(ord.Lines, line)
	}

	if err := r.carts.Clear(userID); err != nil {
		return Order{}, err
	}

	r.storage = append(r.storage, ord)
	return ord, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(id)
}

func (r *InMemoryRepository) getLocked(id int) (Order, error) {
	for _, ord := range r.storage {
		if ord.ID == id {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(userID int, status *Status) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for i := len(r.storage) - 1; i >= 0; i-- {
		ord := r.storage[i]
		if ord.UserID != userID {
			continue
		}
		if status != nil && ord.Status != *status {
			continue
		}
		out = append(out, ord)
	}
	return out, nil
}

func (r *InMemoryRepository) SetStatus(id int, from Status, to Status) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.storage {
		if r.storage[i].ID != id {
			continue
		}
		if r.storage[i].Status != from {
			return Order{}, ErrInvalidTransition
		}
		ts := time.Now().UTC().Format(time.RFC3339)
		r.storage[i].Status = to
		r.storage[i].UpdatedAt = ts
		switch to {
		case StatusPaid:
			if r.storage[i].PaidAt == nil {
				r.storage[i].PaidAt = &ts
			}
		case StatusShipped:
			if r.storage[i].ShippedAt == nil {
				r.storage[i].ShippedAt = &ts
			}
		case StatusDelivered:
			if r.storage[i].DeliveredAt == nil {
				r.storage[i].DeliveredAt = &ts
			}
		}
		return r.storage[i], nil
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) Cancel(id int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.storage {
		if r.storage[i].ID != id {
			continue
		}
		if !r.storage[i].Status.Cancellable() {
			return Order{}, ErrNotCancellable
		}
		for _, line := range r.storage[i].Lines {
			if err := r.products.IncreaseStock(line.ProductID, line.Quantity); err != nil {
				return Order{}, err
			}
		}
		r.storage[i].Status = StatusCancelled
		r.storage[i].UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		return r.storage[i], nil
	}
	return Order{}, ErrNotFound
}
