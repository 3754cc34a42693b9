package product

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound = errors.New("product not found")
)

// ListFilter narrows and pages a product listing. Zero values mean "no
// filter"; Limit <= 0 disables pagination.
type ListFilter struct {
	CategoryID    *int
	SubcategoryID *int
	Active        *bool
	Search        string
	Page          int
	Limit         int
}

type Repository interface {
	// List returns the matching page plus the total match count so handlers
	// can report pagination metadata.
	List(filter ListFilter) ([]Product, int, error)
	GetByID(id int) (Product, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	Delete(id int) error
	SetActive(id int, active bool) error
	// ReduceStock decrements as a single conditional update and fails with
	// *InsufficientStockError when stock cannot cover the quantity.
	ReduceStock(id int, quantity int) error
	// IncreaseStock always succeeds for an existing product.
	IncreaseStock(id int, quantity int) error
}

// InMemoryRepository backs tests without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	nextID  int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) List(filter ListFilter) ([]Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.SubcategoryID != nil && p.SubcategoryID != *filter.SubcategoryID {
			continue
		}
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.Limit
		if start >= total {
			return []Product{}, total, nil
		}
		end := start + filter.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *InMemoryRepository) GetByID(id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(id)
}

func (r *InMemoryRepository) getLocked(id int) (Product, error) {
	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Update(id int, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			p.ID = id
			r.storage[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
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

func (r *InMemoryRepository) SetActive(id int, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].Active = active
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) ReduceStock(id int, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			if r.storage[i].Stock < quantity {
				return &InsufficientStockError{
					ProductID: id,
					Name:      r.storage[i].Name,
					Stock:     r.storage[i].Stock,
					Requested: quantity,
				}
			}
			r.storage[i].Stock -= quantity
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) IncreaseStock(id int, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].Stock += quantity
			return nil
		}
	}
	return ErrNotFound
}
