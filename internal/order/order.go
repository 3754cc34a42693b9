package order

import "errors"

// Status is the order lifecycle state. Transitions only move forward through
// the table below; cancelled and delivered are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows moving to next.
// Self-edges are not allowed, so a repeated transition to the current status
// is rejected rather than re-stamped.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this state may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusPaid
}

// OrderLine is an immutable snapshot of one product within an order.
// Subtotal is always unit price times quantity, recomputed on write and
// never independently settable.
type OrderLine struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"orderId"`
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`

	ProductName string `json:"productName,omitempty"`
}

// Order is created from a cart snapshot at checkout and never hard-deleted;
// cancellation is the only removal path.
type Order struct {
	ID              int     `json:"id"`
	UserID          int     `json:"userId"`
	Total           float64 `json:"total"`
	Status          Status  `json:"status"`
	ShippingAddress string  `json:"shippingAddress"`
	Phone           string  `json:"phone"`
	Notes           *string `json:"notes,omitempty"`
	PaidAt          *string `json:"paidAt,omitempty"`
	ShippedAt       *string `json:"shippedAt,omitempty"`
	DeliveredAt     *string `json:"deliveredAt,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
	UpdatedAt       string  `json:"updatedAt,omitempty"`

	Lines []OrderLine `json:"lines,omitempty"`
}

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
	ErrDeleteNotAllowed  = errors.New("orders cannot be deleted; cancel them instead")
)
