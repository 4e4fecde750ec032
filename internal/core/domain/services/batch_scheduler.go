package services

import (
	"sync"
	"time"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	// SizeThreshold is the queue length at which a zone forms a batch
	// immediately. It equals the batch capacity, so a size-triggered batch
	// is always full.
	SizeThreshold = batch.MaxOrders

	// TimeThreshold is the maximum age of a non-empty zone queue before it
	// forms a batch regardless of size.
	TimeThreshold = 45 * time.Minute
)

// BatchScheduler is a domain service that keeps one FIFO order queue per
// delivery zone and decides when a queue's contents become a batch.
//
// A batch forms when either trigger fires:
//   - the queue reaches SizeThreshold orders, or
//   - the oldest queued order has waited TimeThreshold or longer.
//
// The queue age is measured from the moment the first order entered an
// empty queue and resets whenever a batch is cut with orders left over.
// The scheduler is safe for concurrent use.
type BatchScheduler struct {
	mu        sync.Mutex
	queues    map[kernel.Zone][]kernel.UUID
	startedAt map[kernel.Zone]time.Time
	now       func() time.Time
}

// NewBatchScheduler creates a scheduler with empty queues for every zone.
func NewBatchScheduler() *BatchScheduler {
	return newBatchScheduler(time.Now)
}

// newBatchScheduler allows tests to drive the clock.
func newBatchScheduler(now func() time.Time) *BatchScheduler {
	return &BatchScheduler{
		queues:    make(map[kernel.Zone][]kernel.UUID, len(kernel.Zones())),
		startedAt: make(map[kernel.Zone]time.Time, len(kernel.Zones())),
		now:       now,
	}
}

// Enqueue appends an order to its zone's queue. The first order entering an
// empty queue starts the zone's waiting clock at that order's confirmation
// time; a zero confirmedAt means now.
func (s *BatchScheduler) Enqueue(zone kernel.Zone, orderID kernel.UUID, confirmedAt time.Time) error {
	if !zone.Valid() {
		return errs.NewValueIsInvalidError("zone")
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	if confirmedAt.IsZero() {
		confirmedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queues[zone]) == 0 {
		s.startedAt[zone] = confirmedAt
	}
	s.queues[zone] = append(s.queues[zone], orderID)
	return nil
}

// FormTrigger names which batch trigger fired for a zone.
type FormTrigger int

const (
	TriggerNone FormTrigger = iota
	TriggerSize
	TriggerTime
)

// String returns the trigger name used in log lines.
func (t FormTrigger) String() string {
	switch t {
	case TriggerSize:
		return "size"
	case TriggerTime:
		return "time"
	default:
		return "none"
	}
}

// ShouldFormBatch reports whether a batch trigger has fired for the zone
// and which one. The size trigger dominates when both hold.
func (s *BatchScheduler) ShouldFormBatch(zone kernel.Zone) (bool, FormTrigger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shouldFormLocked(zone)
}

func (s *BatchScheduler) shouldFormLocked(zone kernel.Zone) (bool, FormTrigger) {
	queued := len(s.queues[zone])
	if queued == 0 {
		return false, TriggerNone
	}
	if queued >= SizeThreshold {
		return true, TriggerSize
	}
	if s.now().Sub(s.startedAt[zone]) >= TimeThreshold {
		return true, TriggerTime
	}
	return false, TriggerNone
}

// FormBatch cuts up to SizeThreshold orders from the front of the zone's
// queue and returns them in arrival order. It returns nil when the queue is
// empty, so a concurrent second cut is a harmless no-op.
func (s *BatchScheduler) FormBatch(zone kernel.Zone) []kernel.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[zone]
	if len(queue) == 0 {
		return nil
	}

	cut := len(queue)
	if cut > SizeThreshold {
		cut = SizeThreshold
	}

	formed := make([]kernel.UUID, cut)
	copy(formed, queue[:cut])

	remaining := make([]kernel.UUID, len(queue)-cut)
	copy(remaining, queue[cut:])
	s.queues[zone] = remaining

	if len(remaining) == 0 {
		delete(s.startedAt, zone)
	} else {
		s.startedAt[zone] = s.now()
	}

	return formed
}

// RipeZone pairs a zone whose batch trigger has fired with the trigger
// that fired.
type RipeZone struct {
	Zone    kernel.Zone
	Trigger FormTrigger
}

// RipeZones returns the zones whose batch trigger has fired, in the fixed
// zone order. Used by the periodic sweep.
func (s *BatchScheduler) RipeZones() []RipeZone {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ripe []RipeZone
	for _, zone := range kernel.Zones() {
		if fired, trigger := s.shouldFormLocked(zone); fired {
			ripe = append(ripe, RipeZone{Zone: zone, Trigger: trigger})
		}
	}
	return ripe
}

// QueueLengths returns the current queue length per zone.
func (s *BatchScheduler) QueueLengths() map[kernel.Zone]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	lengths := make(map[kernel.Zone]int, len(kernel.Zones()))
	for _, zone := range kernel.Zones() {
		lengths[zone] = len(s.queues[zone])
	}
	return lengths
}
