package services

import (
	"sync"

	"dispatch/internal/pkg/errs"
)

// DispatchBoard tracks batches that exist but are not yet finished. It
// serves two jobs:
//
//   - a per-batch lock, so delivery confirmations for the same batch are
//     applied one at a time while different batches proceed in parallel;
//   - a FIFO of pending batches that formed while every courier was busy,
//     drained when a courier is released.
//
// The board is safe for concurrent use.
type DispatchBoard struct {
	mu      sync.Mutex
	locks   map[int64]*sync.Mutex
	pending []int64
}

// NewDispatchBoard creates an empty board.
func NewDispatchBoard() *DispatchBoard {
	return &DispatchBoard{
		locks: make(map[int64]*sync.Mutex),
	}
}

// Track registers a batch on the board. Tracking an already tracked batch
// is a no-op.
func (b *DispatchBoard) Track(batchID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.locks[batchID]; !ok {
		b.locks[batchID] = &sync.Mutex{}
	}
}

// LockBatch acquires the batch's confirmation lock, blocking while another
// confirmation for the same batch is in flight. It returns the release for
// the acquired lock; the caller must invoke it exactly once. The release
// stays valid even if the batch is forgotten in between, so a confirmation
// that closes the batch cannot strand a blocked one.
func (b *DispatchBoard) LockBatch(batchID int64) (func(), error) {
	b.mu.Lock()
	lock, ok := b.locks[batchID]
	b.mu.Unlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("batchID", batchID)
	}

	lock.Lock()
	return lock.Unlock, nil
}

// Forget removes a finished batch from the board. Confirmations already
// waiting on the batch's lock still get their turn through the release
// handed out by LockBatch; they find the batch gone and bail out on their
// own re-checks.
func (b *DispatchBoard) Forget(batchID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.locks, batchID)
}

// EnqueuePending appends a batch that could not be allocated a courier.
func (b *DispatchBoard) EnqueuePending(batchID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, batchID)
}

// PopPending removes and returns the oldest pending batch. The second
// return value is false when no batch is pending.
func (b *DispatchBoard) PopPending() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		return 0, false
	}

	batchID := b.pending[0]
	b.pending = b.pending[1:]
	return batchID, true
}

// PendingCount returns the number of batches awaiting a courier.
func (b *DispatchBoard) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.pending)
}
