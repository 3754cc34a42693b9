package user

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const PasswordMinLen = 6

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() []User {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (User, error) {
	return s.repo.GetByID(id)
}

// Register creates a customer account. The role is forced to customer;
// staff and admin accounts are provisioned out of band.
func (s *Service) Register(user User) (User, []string, error) {
	problems := make([]string, 0)
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Name == "" {
		problems = append(problems, "name is required")
	}
	if !strings.Contains(user.Email, "@") {
		problems = append(problems, "email is invalid")
	}
	if len(user.Password) < PasswordMinLen {
		problems = append(problems, "password must be at least 6 characters")
	}
	if len(problems) > 0 {
		return User{}, problems, nil
	}

	if _, err := s.repo.GetByEmail(user.Email); err == nil {
		return User{}, nil, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, nil, err
	}

	user.Password = string(hashed)
	user.Role = RoleCustomer
	// the repository contract does not promise an active default
	user.Active = true
	created, err := s.repo.Create(user)
	if err != nil {
		return User{}, nil, err
	}
	return created, nil, nil
}

func (s *Service) Authenticate(email, password string) (User, error) {
	user, err := s.repo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !user.Active {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Update persists profile changes. A non-empty password gets hashed
// unless it already looks like a bcrypt digest.
func (s *Service) Update(id int, user User) (User, error) {
	if user.Password != "" && !looksLikeBcrypt(user.Password) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		user.Password = string(hashed)
	}
	return s.repo.Update(id, user)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

func looksLikeBcrypt(value string) bool {
	return len(value) > 4 && value[0:2] == "$2"
}
