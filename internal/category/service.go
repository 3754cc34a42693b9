package category

// Service provides read access to categories. Mutations go through the
// catalog engine so cascades and dependency checks stay in one place.
type Service struct {
	repo Repository
}

// ServiceInterface lets other packages depend on the category reads without
// the concrete type.
type ServiceInterface interface {
	List(active *bool) ([]Category, error)
	GetByID(id int) (Category, error)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(active *bool) ([]Category, error) {
	return s.repo.List(active)
}

func (s *Service) GetByID(id int) (Category, error) {
	return s.repo.GetByID(id)
}

var _ ServiceInterface = (*Service)(nil)
