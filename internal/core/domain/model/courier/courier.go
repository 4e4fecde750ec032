package courier

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrCourierIsNotConstructed is returned when a Courier instance was not
	// created through NewCourier or RestoreCourier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")

	// ErrNameIsRequired is returned when the courier name is empty.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")

	// ErrPhoneIsRequired is returned when the phone number contains no digits.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")

	// ErrCourierBusy is returned when a batch is assigned to a courier that
	// already carries one.
	ErrCourierBusy = errors.New("courier is busy with another batch")

	// ErrCourierIdle is returned when Release is called on a courier that
	// has no batch.
	ErrCourierIdle = errors.New("courier has no batch to release")
)

// Courier is the aggregate root for a delivery courier. A courier carries at
// most one batch at a time and accumulates traveled distance across batches.
//
// Invariants:
//   - created only via NewCourier / RestoreCourier
//   - Busy if and only if a batch id is bound
//   - the phone number is stored digits-only
//   - traveled distance only grows
type Courier struct {
	id             kernel.UUID
	name           string
	phone          string
	status         Status
	currentBatchID *int64
	distanceKm     float64

	isConstructed bool
}

// NewCourier creates an idle courier. The phone number is normalized to its
// digits, so "+598 99 123 456" and "099123456" match the same suffix lookups.
func NewCourier(id kernel.UUID, name string, phone string) (*Courier, error) {
	c := &Courier{
		status:        Idle,
		isConstructed: true,
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setPhone(phone),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier reconstructs a courier from persistence.
func RestoreCourier(
	id kernel.UUID,
	name string,
	phone string,
	status Status,
	currentBatchID *int64,
	distanceKm float64,
) (*Courier, error) {
	c, err := NewCourier(id, name, phone)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}
	if status == Busy && currentBatchID == nil {
		return nil, errs.NewValueIsRequiredError("currentBatchID")
	}
	if status == Idle && currentBatchID != nil {
		return nil, errs.NewValueIsInvalidError("currentBatchID")
	}
	if distanceKm < 0 {
		return nil, errs.NewValueIsInvalidError("distanceKm")
	}

	c.status = status
	c.currentBatchID = currentBatchID
	c.distanceKm = distanceKm
	return c, nil
}

// Validate ensures the Courier was created through a constructor.
func (c *Courier) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCourierIsNotConstructed
	}

	return nil
}

// IsEqual compares two couriers by identifier.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier's unique identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier's display name.
func (c *Courier) Name() string {
	return c.name
}

// Phone returns the digits-only phone number.
func (c *Courier) Phone() string {
	return c.phone
}

// Status returns the courier's availability state.
func (c *Courier) Status() Status {
	return c.status
}

// IsIdle reports whether the courier can take a batch.
func (c *Courier) IsIdle() bool {
	return c.status == Idle
}

// CurrentBatchID returns the id of the batch in progress, or nil when idle.
func (c *Courier) CurrentBatchID() *int64 {
	return c.currentBatchID
}

// DistanceKm returns the total distance traveled over all completed legs.
func (c *Courier) DistanceKm() float64 {
	return c.distanceKm
}

// AssignBatch binds a batch to the courier and marks it busy.
func (c *Courier) AssignBatch(batchID int64) error {
	if batchID <= 0 {
		return errs.NewValueIsInvalidError("batchID")
	}
	if c.status == Busy {
		return ErrCourierBusy
	}

	c.status = Busy
	c.currentBatchID = &batchID
	return nil
}

// Release frees the courier after its batch is fully delivered.
func (c *Courier) Release() error {
	if c.status != Busy {
		return ErrCourierIdle
	}

	c.status = Idle
	c.currentBatchID = nil
	return nil
}

// AddDistance accounts a traveled leg toward the courier's total.
func (c *Courier) AddDistance(km float64) error {
	if km < 0 {
		return errs.NewValueIsInvalidError("km")
	}

	c.distanceKm += km
	return nil
}

// PhoneMatchesSuffix reports whether the courier's phone ends with the
// digits of the given fragment. Non-digit characters in the fragment are
// ignored; an empty fragment never matches.
func (c *Courier) PhoneMatchesSuffix(fragment string) bool {
	digits := digitsOnly(fragment)
	return digits != "" && strings.HasSuffix(c.phone, digits)
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setPhone(phone string) error {
	digits := digitsOnly(phone)
	if digits == "" {
		return ErrPhoneIsRequired
	}
	c.phone = digits
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
