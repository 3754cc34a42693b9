package product

// Service exposes product reads plus the inventory ledger operations used by
// the cart and order flows.
type Service struct {
	repo Repository
}

type ServiceInterface interface {
	List(filter ListFilter) ([]Product, int, error)
	GetByID(id int) (Product, error)
	ReduceStock(id int, quantity int) error
	IncreaseStock(id int, quantity int) error
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(filter ListFilter) ([]Product, int, error) {
	return s.repo.List(filter)
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

// ReduceStock fails with *InsufficientStockError when the product cannot
// cover the quantity. The repository performs the decrement as one
// conditional update.
func (s *Service) ReduceStock(id int, quantity int) error {
	return s.repo.ReduceStock(id, quantity)
}

// IncreaseStock restores units, used on order cancellation.
func (s *Service) IncreaseStock(id int, quantity int) error {
	return s.repo.IncreaseStock(id, quantity)
}

var _ ServiceInterface = (*Service)(nil)
