package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierOfTotal(t *testing.T) {
	// Every rating maps to exactly one band, including negatives.
	for _, r := range []int{-100, 0, 1, 499, 500, 799, 800, 1199, 1200, 1399, 1400, 1599, 1600, 1799, 1800, 2499, 2500, 9000} {
		tier := TierOf(r)
		require.NotEmpty(t, tier.Name, "rating %d", r)
	}

	assert.Equal(t, "novato", TierOf(-50).Name)
	assert.Equal(t, "novato", TierOf(0).Name)
	assert.Equal(t, "aspirante", TierOf(500).Name)
	assert.Equal(t, "promesa", TierOf(1199).Name)
	assert.Equal(t, "relampago", TierOf(1200).Name)
	assert.Equal(t, "inazuma", TierOf(2499).Name)
	assert.Equal(t, "heroe", TierOf(2500).Name)
	assert.Equal(t, "heroe", TierOf(100000).Name)
}

func TestTierOfMonotonic(t *testing.T) {
	prev := -1
	for r := 0; r <= 3000; r += 7 {
		idx := TierIndex(TierOf(r).Name)
		assert.GreaterOrEqual(t, idx, prev, "rating %d", r)
		prev = idx
	}
}

func TestAdjacentTiers(t *testing.T) {
	assert.Equal(t, []string{"aspirante"}, AdjacentTiers("aspirante", 0))
	assert.Equal(t, []string{"novato", "aspirante", "promesa"}, AdjacentTiers("aspirante", 1))
	assert.Equal(t, []string{"novato", "aspirante", "promesa", "relampago"}, AdjacentTiers("aspirante", 2))

	// Clamped at the top of the ladder.
	assert.Equal(t, []string{"inazuma", "heroe"}, AdjacentTiers("heroe", 1))
	// Unknown names fall back to the lowest band.
	assert.Equal(t, []string{"novato", "aspirante"}, AdjacentTiers("desconocido", 1))
}

func TestTierModifierMonotonic(t *testing.T) {
	prev := 10.0
	for _, r := range []int{0, 499, 500, 800, 1200, 1400, 1600, 1800, 2500, 4000} {
		m := tierModifier(r)
		assert.LessOrEqual(t, m, prev, "rating %d", r)
		prev = m
	}
}
