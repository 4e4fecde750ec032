package services_test

import (
	"math/rand/v2"
	"testing"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCourier(t *testing.T, name string) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), name, "099123456")
	require.NoError(t, err)
	return c
}

func TestRandomSelectionPolicy(t *testing.T) {
	t.Run("returns ErrNoCourierIdle without candidates", func(t *testing.T) {
		policy := services.NewRandomSelectionPolicy()

		_, err := policy.SelectCourier(nil)
		require.ErrorIs(t, err, services.ErrNoCourierIdle)
	})

	t.Run("returns ErrNoCourierIdle when every candidate is busy", func(t *testing.T) {
		policy := services.NewRandomSelectionPolicy()

		busy := makeCourier(t, "Ana")
		require.NoError(t, busy.AssignBatch(1))

		_, err := policy.SelectCourier([]*courier.Courier{busy})
		require.ErrorIs(t, err, services.ErrNoCourierIdle)
	})

	t.Run("skips busy couriers", func(t *testing.T) {
		policy := services.NewRandomSelectionPolicy()

		busy := makeCourier(t, "Ana")
		require.NoError(t, busy.AssignBatch(1))
		idle := makeCourier(t, "Bruno")

		picked, err := policy.SelectCourier([]*courier.Courier{busy, idle})
		require.NoError(t, err)
		assert.True(t, idle.IsEqual(picked))
	})

	t.Run("rejects unconstructed candidates", func(t *testing.T) {
		policy := services.NewRandomSelectionPolicy()

		_, err := policy.SelectCourier([]*courier.Courier{{}})
		require.Error(t, err)
	})

	t.Run("is deterministic under a fixed seed", func(t *testing.T) {
		candidates := []*courier.Courier{
			makeCourier(t, "Ana"),
			makeCourier(t, "Bruno"),
			makeCourier(t, "Carla"),
		}

		first := services.NewRandomSelectionPolicyFromSource(rand.NewPCG(1, 2))
		second := services.NewRandomSelectionPolicyFromSource(rand.NewPCG(1, 2))

		for range 10 {
			a, err := first.SelectCourier(candidates)
			require.NoError(t, err)
			b, err := second.SelectCourier(candidates)
			require.NoError(t, err)
			assert.True(t, a.IsEqual(b))
		}
	})

	t.Run("eventually picks every idle courier", func(t *testing.T) {
		candidates := []*courier.Courier{
			makeCourier(t, "Ana"),
			makeCourier(t, "Bruno"),
		}
		policy := services.NewRandomSelectionPolicyFromSource(rand.NewPCG(7, 7))

		picked := make(map[string]bool)
		for range 100 {
			c, err := policy.SelectCourier(candidates)
			require.NoError(t, err)
			picked[c.Name()] = true
		}
		assert.Len(t, picked, 2)
	})
}
