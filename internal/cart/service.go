package cart

import (
	"errors"
	"time"

	"github.com/tienda-labs/ecommerce-backend/internal/product"
)

var (
	ErrProductInactive = errors.New("product is not available")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Service orchestrates cart operations. It consults the product service for
// availability, stock and the price snapshot.
type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

// AddItem puts quantity units of a product into the user's cart, snapshotting
// the current unit price. Adding a product already in the cart raises the
// existing row's quantity instead of creating a duplicate; the stock check
// always runs against the combined quantity.
func (s *Service) AddItem(userID int, productID int, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(productID)
	if err != nil {
		return CartItem{}, err
	}
	if !p.Active {
		return CartItem{}, ErrProductInactive
	}

	existing, err := s.repo.GetByUserAndProduct(userID, productID)
	switch err {
	case nil:
		total := existing.Quantity + quantity
		if !p.HasStock(total) {
			return CartItem{}, &product.InsufficientStockError{
				ProductID: p.ID, Name: p.Name, Stock: p.Stock, Requested: total,
			}
		}
		return s.repo.UpdateQuantity(existing.ID, total, now())
	case ErrNotFound:
		if !p.HasStock(quantity) {
			return CartItem{}, &product.InsufficientStockError{
				ProductID: p.ID, Name: p.Name, Stock: p.Stock, Requested: quantity,
			}
		}
		ts := now()
		return s.repo.Create(CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: p.Price,
			CreatedAt: ts,
			UpdatedAt: ts,
		})
	default:
		return CartItem{}, err
	}
}

// UpdateQuantity sets the item's quantity to an absolute value, re-checking
// stock against the new quantity rather than the delta.
func (s *Service) UpdateQuantity(userID int, itemID int, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, ErrInvalidQuantity
	}

	item, err := s.repo.GetByID(itemID)
	if err != nil {
		return CartItem{}, err
	}
	if item.UserID != userID {
		return CartItem{}, ErrNotFound
	}

	p, err := s.products.GetByID(item.ProductID)
	if err != nil {
		return CartItem{}, err
	}
	if !p.HasStock(quantity) {
		return CartItem{}, &product.InsufficientStockError{
			ProductID: p.ID, Name: p.Name, Stock: p.Stock, Requested: quantity,
		}
	}

	return s.repo.UpdateQuantity(itemID, quantity, now())
}

// RemoveItem deletes a single cart row owned by the user.
func (s *Service) RemoveItem(userID int, itemID int) error {
	item, err := s.repo.GetByID(itemID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return ErrNotFound
	}
	return s.repo.Delete(itemID)
}

// List returns the user's items plus their in-memory total.
func (s *Service) List(userID int) ([]CartItem, float64, error) {
	items, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, 0, err
	}
	return items, Total(items), nil
}

// Clear empties the user's cart.
func (s *Service) Clear(userID int) error {
	return s.repo.Clear(userID)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
