package order

import (
	"testing"

	"github.com/tienda-labs/ecommerce-backend/internal/cart"
	"github.com/tienda-labs/ecommerce-backend/internal/product"
)

func newTestService() (*Service, *cart.InMemoryRepository, *product.InMemoryRepository) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Phone A", Price: 200, Stock: 10, SubcategoryID: 1, CategoryID: 1, Active: true},
		{ID: 2, Name: "Phone B", Price: 300, Stock: 2, SubcategoryID: 1, CategoryID: 1, Active: true},
	})
	carts := cart.NewInMemoryRepository([]cart.CartItem{
		{ID: 1, UserID: 7, ProductID: 1, Quantity: 2, UnitPrice: 180}, // snapshot below current price
		{ID: 2, UserID: 7, ProductID: 2, Quantity: 1, UnitPrice: 300},
	})
	repo := NewInMemoryRepository(carts, products)
	return NewService(repo), carts, products
}

func TestCheckoutBuildsOrderFromSnapshots(t *testing.T) {
	service, carts, products := newTestService()

	ord, problems, err := service.Checkout(7, "123 Main Street, Springfield", "5551234567", nil)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if len(problems) > 0 {
		t.Fatalf("unexpected validation problems: %v", problems)
	}

	if ord.Status != StatusPending {
		t.Fatalf("expected pending order, got %s", ord.Status)
	}
	// total uses the snapshot 180, not the current 200
	if ord.Total != 2*180+300 {
		t.Fatalf("expected total 660, got %v", ord.Total)
	}
	if len(ord.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(ord.Lines))
	}

	// stock reserved
	p1, _ := products.GetByID(1)
	if p1.Stock != 8 {
		t.Fatalf("expected stock 8 after checkout, got %d", p1.Stock)
	}
	p2, _ := products.GetByID(2)
	if p2.Stock != 1 {
		t.Fatalf("expected stock 1 after checkout, got %d", p2.Stock)
	}

	// cart wiped
	items, _ := carts.ListByUser(7)
	if len(items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d items", len(items))
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	service, _, _ := newTestService()

	_, _, err := service.Checkout(99, "123 Main Street, Springfield", "5551234567", nil)
	if err != ErrEmptyCart {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutValidation(t *testing.T) {
	service, _, _ := newTestService()

	_, problems, err := service.Checkout(7, "short", "1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(problems) != 2 {
		t.Fatalf("expected 2 validation problems, got %v", problems)
	}
}

func TestCheckoutInsufficientStockAbortsEverything(t *testing.T) {
	service, carts, products := newTestService()

	// product 2 has stock 2; cart asks for 3
	if _, err := carts.UpdateQuantity(2, 3, ""); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, _, err := service.Checkout(7, "123 Main Street, Springfield", "5551234567", nil)
	stockErr, ok := err.(*product.InsufficientStockError)
	if !ok {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != 2 {
		t.Fatalf("expected failure on product 2, got %d", stockErr.ProductID)
	}

	// cart untouched
	items, _ := carts.ListByUser(7)
	if len(items) != 2 {
		t.Fatalf("cart should survive a failed checkout, got %d items", len(items))
	}
	// product 2 stock untouched (product 1 may have been pre-checked only)
	p2, _ := products.GetByID(2)
	if p2.Stock != 2 {
		t.Fatalf("stock should be untouched after failed checkout, got %d", p2.Stock)
	}
	p1, _ := products.GetByID(1)
	if p1.Stock != 10 {
		t.Fatalf("no stock may move on a failed checkout, got %d", p1.Stock)
	}
}

func TestChangeStatusFollowsStateMachine(t *testing.T) {
	service, _, _ := newTestService()

	ord, _, err := service.Checkout(7, "123 Main Street, Springfield", "5551234567", nil)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := service.ChangeStatus(ord.ID, StatusDelivered); err != ErrInvalidTransition {
		t.Fatalf("pending -> delivered should be rejected, got %v", err)
	}
	if _, err := service.ChangeStatus(ord.ID, "refunded"); err != ErrInvalidStatus {
		t.Fatalf("unknown status should be rejected, got %v", err)
	}
	if _, err := service.ChangeStatus(ord.ID, StatusPending); err != ErrInvalidTransition {
		t.Fatalf("re-requesting the current status should be rejected, got %v", err)
	}

	paid, err := service.ChangeStatus(ord.ID, StatusPaid)
	if err != nil {
		t.Fatalf("pending -> paid failed: %v", err)
	}
	if paid.PaidAt == nil {
		t.Fatalf("paid_at should be stamped on first entry")
	}

	shipped, err := service.ChangeStatus(ord.ID, StatusShipped)
	if err != nil {
		t.Fatalf("paid -> shipped failed: %v", err)
	}
	if shipped.ShippedAt == nil || shipped.PaidAt == nil {
		t.Fatalf("earlier stamps must survive later transitions")
	}

	delivered, err := service.ChangeStatus(ord.ID, StatusDelivered)
	if err != nil {
		t.Fatalf("shipped -> delivered failed: %v", err)
	}
	if delivered.DeliveredAt == nil {
		t.Fatalf("delivered_at should be stamped")
	}

	if _, err := service.ChangeStatus(ord.ID, StatusCancelled); err != ErrInvalidTransition {
		t.Fatalf("delivered orders must not be cancellable via status change, got %v", err)
	}
}

func TestCancelRestoresStock(t *testing.T) {
	service, _, products := newTestService()

	ord, _, err := service.Checkout(7, "123 Main Street, Springfield", "5551234567", nil)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	cancelled, err := service.Cancel(ord.ID, 7, false)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	p1, _ := products.GetByID(1)
	if p1.Stock != 10 {
		t.Fatalf("stock not restored for product 1: %d", p1.Stock)
	}
	p2, _ := products.GetByID(2)
	if p2.Stock != 2 {
		t.Fatalf("stock not restored for product 2: %d", p2.Stock)
	}

	// a cancelled order cannot be cancelled again
	if _, err := service.Cancel(ord.ID, 7, false); err != ErrNotCancellable {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
}

func TestCancelOwnership(t *testing.T) {
	service, _, _ := newTestService()

	ord, _, err := service.Checkout(7, "123 Main Street, Springfield", "5551234567", nil)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := service.Cancel(ord.ID, 8, false); err != ErrNotFound {
		t.Fatalf("another user's cancel should look like not found, got %v", err)
	}
	if _, err := service.Cancel(ord.ID, 8, true); err != nil {
		t.Fatalf("admin cancel should succeed, got %v", err)
	}
}

func TestGetForUserHidesOtherOrders(t *testing.T) {
	service, _, _ := newTestService()

	ord, _, err := service.Checkout(7, "123 Main Street, Springfield", "5551234567", nil)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := service.GetForUser(ord.ID, 8, false); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign order, got %v", err)
	}
	if _, err := service.GetForUser(ord.ID, 8, true); err != nil {
		t.Fatalf("admin should see any order, got %v", err)
	}
	got, err := service.GetForUser(ord.ID, 7, false)
	if err != nil {
		t.Fatalf("owner should see the order, got %v", err)
	}
	if got.ID != ord.ID {
		t.Fatalf("wrong order returned: %d", got.ID)
	}
}

func TestDeleteAlwaysRefused(t *testing.T) {
	service, _, _ := newTestService()

	if err := service.Delete(1); err != ErrDeleteNotAllowed {
		t.Fatalf("expected ErrDeleteNotAllowed, got %v", err)
	}
}

func TestSetStatusRejectsStaleRead(t *testing.T) {
	service, _, _ := newTestService()

	ord, _, err := service.Checkout(7, "123 Main Street, Springfield", "5551234567", nil)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// two callers validated pending->paid; only the first write lands
	repo := service.repo
	if _, err := repo.SetStatus(ord.ID, StatusPending, StatusPaid); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}
	if _, err := repo.SetStatus(ord.ID, StatusPending, StatusPaid); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition for the losing writer, got %v", err)
	}

	got, err := service.GetForUser(ord.ID, 7, false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != StatusPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}
}
