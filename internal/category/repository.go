package category

import (
	"errors"
	"sync"
)

var (
	ErrNotFound   = errors.New("category not found")
	ErrNameExists = errors.New("category name already exists")
)

type Repository interface {
	// List returns categories ordered by name. active filters by state when
	// non-nil.
	List(active *bool) ([]Category, error)
	GetByID(id int) (Category, error)
	GetByName(name string) (Category, error)
	Create(cat Category) (Category, error)
	Update(id int, cat Category) (Category, error)
	Delete(id int) error
	SetActive(id int, active bool) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Category
	nextID  int
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Category, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, cat := range seed {
		r.storage = append(r.storage, cat)
		if cat.ID > maxID {
			maxID = cat.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) List(active *bool) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Category, 0, len(r.storage))
	for _, cat := range r.storage {
		if active != nil && cat.Active != *active {
			continue
		}
		out = append(out, cat)
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(id int) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cat := range r.storage {
		if cat.ID == id {
			return cat, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) GetByName(name string) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cat := range r.storage {
		if cat.Name == name {
			return cat, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Create(cat Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cat.ID == 0 {
		cat.ID = r.nextID
		r.nextID++
	}
	r.storage = append(r.storage, cat)
	return cat, nil
}

func (r *InMemoryRepository) Update(id int, cat Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			cat.ID = id
			r.storage[i] = cat
			return cat, nil
		}
	}
	return Category{}, ErrNotFound
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
