package cart

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("cart item not found")
)

type Repository interface {
	ListByUser(userID int) ([]CartItem, error)
	GetByID(id int) (CartItem, error)
	GetByUserAndProduct(userID int, productID int) (CartItem, error)
	Create(item CartItem) (CartItem, error)
	UpdateQuantity(id int, quantity int, updatedAt string) (CartItem, error)
	Delete(id int) error
	Clear(userID int) error
}

// InMemoryRepository backs tests without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []CartItem
	nextID  int
}

func NewInMemoryRepository(seed []CartItem) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]CartItem, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, item := range seed {
		r.storage = append(r.storage, item)
		if item.ID > maxID {
			maxID = item.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) ListByUser(userID int) ([]CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CartItem, 0)
	for _, item := range r.storage {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(id int) (CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.storage {
		if item.ID == id {
			return item, nil
		}
	}
	return CartItem{}, ErrNotFound
}

func (r *InMemoryRepository) GetByUserAndProduct(userID int, productID int) (CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.storage {
		if item.UserID == userID && item.ProductID == productID {
			return item, nil
		}
	}
	return CartItem{}, ErrNotFound
}

func (r *InMemoryRepository) Create(item CartItem) (CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == 0 {
		item.ID = r.nextID
		r.nextID++
	}
	r.storage = append(r.storage, item)
	return item, nil
}

func (r *InMemoryRepository) UpdateQuantity(id int, quantity int, updatedAt string) (CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].Quantity = quantity
			if updatedAt != "" {
				r.storage[i].UpdatedAt = updatedAt
			}
			return r.storage[i], nil
		}
	}
	return CartItem{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.storage[:0]
	for _, item := range r.storage {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	r.storage = kept
	return nil
}
