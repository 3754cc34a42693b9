package order

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusPending, StatusPending, false},
		{StatusPaid, StatusShipped, true},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusDelivered, false},
		{StatusPaid, StatusPending, false},
		{StatusPaid, StatusPaid, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusPaid, false},
		{StatusDelivered, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusPaid, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Status{"", "PAID", "unknown", "refunded"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}

func TestStatusCancellable(t *testing.T) {
	if !StatusPending.Cancellable() || !StatusPaid.Cancellable() {
		t.Fatalf("pending and paid orders must be cancellable")
	}
	for _, s := range []Status{StatusShipped, StatusDelivered, StatusCancelled} {
		if s.Cancellable() {
			t.Errorf("%s should not be cancellable", s)
		}
	}
}
