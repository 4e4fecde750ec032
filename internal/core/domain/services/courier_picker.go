package services

import (
	"errors"
	"math/rand/v2"

	"dispatch/internal/core/domain/model/courier"
)

// ErrNoCourierIdle is returned when no idle courier is available for a batch.
// Callers treat it as backpressure: the batch goes to the pending queue and
// waits for a courier to be released.
var ErrNoCourierIdle = errors.New("no idle courier available")

// SelectionPolicy chooses which idle courier takes a batch.
type SelectionPolicy interface {
	// SelectCourier picks one courier among the idle candidates.
	// Returns ErrNoCourierIdle when no candidate is idle.
	SelectCourier(candidates []*courier.Courier) (*courier.Courier, error)
}

// RandomSelectionPolicy picks an idle courier uniformly at random, which
// spreads batches evenly over a shift without tracking any state.
type RandomSelectionPolicy struct {
	rnd *rand.Rand
}

// NewRandomSelectionPolicy creates a policy with its own random source.
func NewRandomSelectionPolicy() RandomSelectionPolicy {
	return RandomSelectionPolicy{
		rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewRandomSelectionPolicyFromSource creates a policy over the given source.
// Tests use a fixed-seed PCG to make the choice deterministic.
func NewRandomSelectionPolicyFromSource(src rand.Source) RandomSelectionPolicy {
	return RandomSelectionPolicy{rnd: rand.New(src)}
}

// SelectCourier returns a random idle courier from the candidates.
func (p RandomSelectionPolicy) SelectCourier(candidates []*courier.Courier) (*courier.Courier, error) {
	var idle []*courier.Courier
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if c.IsIdle() {
			idle = append(idle, c)
		}
	}

	if len(idle) == 0 {
		return nil, ErrNoCourierIdle
	}

	return idle[p.rnd.IntN(len(idle))], nil
}
