package subcategory

// Service provides read access to subcategories. Mutations go through the
// catalog engine.
type Service struct {
	repo Repository
}

type ServiceInterface interface {
	List(categoryID *int, active *bool) ([]Subcategory, error)
	GetByID(id int) (Subcategory, error)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(categoryID *int, active *bool) ([]Subcategory, error) {
	return s.repo.List(categoryID, active)
}

func (s *Service) GetByID(id int) (Subcategory, error) {
	return s.repo.GetByID(id)
}

var _ ServiceInterface = (*Service)(nil)
