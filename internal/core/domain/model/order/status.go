package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Confirmed ──> Queued ──> Batched ──> OutForDelivery ──> Delivered
//
// Every transition is forward-only; Delivered is final. Orders are never
// deleted, so there is no terminal removal state.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Confirmed is the initial status: the customer has confirmed the order
	// and it is about to enter a zone queue.
	Confirmed

	// Queued indicates the order sits in its zone's FIFO awaiting batch
	// formation.
	Queued

	// Batched indicates the order has been bound to a batch that is not yet
	// allocated to a courier.
	Batched

	// OutForDelivery indicates the order's batch is allocated and the
	// courier is en route.
	OutForDelivery

	// Delivered indicates the courier confirmed delivery with the order's
	// verification code. Final state.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "Unknown",
		Confirmed:      "Confirmed",
		Queued:         "Queued",
		Batched:        "Batched",
		OutForDelivery: "OutForDelivery",
		Delivered:      "Delivered",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Confirmed:      "Confirmed",
		Queued:         "Queued",
		Batched:        "Batched",
		OutForDelivery: "OutForDelivery",
		Delivered:      "Delivered",
	}
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements fmt.Stringer and is safe on any value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

func (s Status) transition(from, to Status, verb string) (Status, error) {
	if s != from {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to %s", s.String(), verb),
		)
	}
	return to, nil
}

// Queue transitions Confirmed -> Queued.
func (s Status) Queue() (Status, error) {
	return s.transition(Confirmed, Queued, "queue")
}

// Batch transitions Queued -> Batched.
func (s Status) Batch() (Status, error) {
	return s.transition(Queued, Batched, "batch")
}

// StartDelivery transitions Batched -> OutForDelivery.
func (s Status) StartDelivery() (Status, error) {
	return s.transition(Batched, OutForDelivery, "start delivery")
}

// Deliver transitions OutForDelivery -> Delivered.
func (s Status) Deliver() (Status, error) {
	return s.transition(OutForDelivery, Delivered, "deliver")
}

// IsFinal reports whether no further transitions are possible.
func (s Status) IsFinal() bool {
	return s == Delivered
}
