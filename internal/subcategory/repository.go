package subcategory

import (
	"errors"
	"sync"
)

var (
	ErrNotFound   = errors.New("subcategory not found")
	ErrNameExists = errors.New("subcategory name already exists in this category")
)

type Repository interface {
	// List returns subcategories ordered by name, optionally filtered by
	// parent category and/or active state.
	List(categoryID *int, active *bool) ([]Subcategory, error)
	GetByID(id int) (Subcategory, error)
	// GetByName looks a subcategory up by its per-category unique name.
	GetByName(categoryID int, name string) (Subcategory, error)
	Create(sc Subcategory) (Subcategory, error)
	Update(id int, sc Subcategory) (Subcategory, error)
	Delete(id int) error
	SetActive(id int, active bool) error
}

// InMemoryRepository backs tests without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Subcategory
	nextID  int
}

func NewInMemoryRepository(seed []Subcategory) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Subcategory, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, sc := range seed {
		r.storage = append(r.storage, sc)
		if sc.ID > maxID {
			maxID = sc.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) List(categoryID *int, active *bool) ([]Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subcategory, 0, len(r.storage))
	for _, sc := range r.storage {
		if categoryID != nil && sc.CategoryID != *categoryID {
			continue
		}
		if active != nil && sc.Active != *active {
			continue
		}
		out = append(out, sc)
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(id int) (Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sc := range r.storage {
		if sc.ID == id {
			return sc, nil
		}
	}
	return Subcategory{}, ErrNotFound
}

func (r *InMemoryRepository) GetByName(categoryID int, name string) (Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sc := range r.storage {
		if sc.CategoryID == categoryID && sc.Name == name {
			return sc, nil
		}
	}
	return Subcategory{}, ErrNotFound
}

func (r *InMemoryRepository) Create(sc Subcategory) (Subcategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sc.ID == 0 {
		sc.ID = r.nextID
		r.nextID++
	}
	r.storage = append(r.storage, sc)
	return sc, nil
}

func (r *InMemoryRepository) Update(id int, sc Subcategory) (Subcategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			sc.ID = id
			r.storage[i] = sc
			return sc, nil
		}
	}
	return Subcategory{}, ErrNotFound
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
