package order

import "strings"

const (
	AddressMinLen = 10
	PhoneMinLen   = 7
)

type Service struct {
	repo Repository
}

type ServiceInterface interface {
	Checkout(userID int, shippingAddress string, phone string, notes *string) (Order, []string, error)
	GetForUser(id int, userID int, admin bool) (Order, error)
	ListByUser(userID int, status *Status) ([]Order, error)
	ChangeStatus(id int, status Status) (Order, error)
	Cancel(id int, userID int, admin bool) (Order, error)
	Delete(id int) error
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Checkout validates the shipping details and converts the user's cart into a
// pending order. Validation problems come back as the middle return value.
func (s *Service) Checkout(userID int, shippingAddress string, phone string, notes *string) (Order, []string, error) {
	problems := make([]string, 0)
	if len(strings.TrimSpace(shippingAddress)) < AddressMinLen {
		problems = append(problems, "shipping address must be at least 10 characters")
	}
	if len(strings.TrimSpace(phone)) < PhoneMinLen {
		problems = append(problems, "phone must be at least 7 characters")
	}
	if len(problems) > 0 {
		return Order{}, problems, nil
	}

	ord, err := s.repo.Checkout(userID, strings.TrimSpace(shippingAddress), strings.TrimSpace(phone), notes)
	if err != nil {
		return Order{}, nil, err
	}
	return ord, nil, nil
}

// GetForUser fetches an order, hiding other users' orders behind ErrNotFound
// unless the caller is an admin.
func (s *Service) GetForUser(id int, userID int, admin bool) (Order, error) {
	ord, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}
	if !admin && ord.UserID != userID {
		return Order{}, ErrNotFound
	}
	return ord, nil
}

func (s *Service) ListByUser(userID int, status *Status) ([]Order, error) {
	return s.repo.ListByUser(userID, status)
}

// ChangeStatus moves an order along the lifecycle. Cancellation goes through
// Cancel so stock restoration is never skipped.
func (s *Service) ChangeStatus(id int, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, ErrInvalidStatus
	}
	ord, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}
	if status == StatusCancelled {
		if !ord.Status.Cancellable() {
			return Order{}, ErrInvalidTransition
		}
		return s.repo.Cancel(id)
	}
	if !ord.Status.CanTransitionTo(status) {
		return Order{}, ErrInvalidTransition
	}
	return s.repo.SetStatus(id, ord.Status, status)
}

// Cancel lets the owner (or an admin) cancel a pending or paid order,
// restoring the reserved stock.
func (s *Service) Cancel(id int, userID int, admin bool) (Order, error) {
	ord, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}
	if !admin && ord.UserID != userID {
		return Order{}, ErrNotFound
	}
	if !ord.Status.Cancellable() {
		return Order{}, ErrNotCancellable
	}
	return s.repo.Cancel(id)
}

// Delete always refuses. Orders are a financial record; cancellation is the
// only way to void one.
func (s *Service) Delete(id int) error {
	return ErrDeleteNotAllowed
}
