package campaign

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedSimulator_Distribution(t *testing.T) {
	sim := NewWeightedSimulator(rand.NewSource(42))

	const draws = 20000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		out := sim.Classify(Lead{Name: "Test"})
		counts[out.Label]++
	}

	require.Len(t, counts, 4, "every outcome should be drawn")

	// generous tolerance around the 40/30/20/10 weights
	assert.InDelta(t, 0.40, float64(counts["Voicemail"])/draws, 0.05)
	assert.InDelta(t, 0.30, float64(counts["Connected - Not Interested"])/draws, 0.05)
	assert.InDelta(t, 0.20, float64(counts["Connected - Callback"])/draws, 0.05)
	assert.InDelta(t, 0.10, float64(counts["Appointment Booked"])/draws, 0.05)
}

func TestWeightedSimulator_OutcomeShape(t *testing.T) {
	for _, row := range outcomeTable {
		out := row.outcome
		switch out.Label {
		case "Voicemail":
			assert.Equal(t, "Open - Not Contacted", out.Status)
			assert.False(t, out.Connected)
			assert.False(t, out.Appointment)
		case "Connected - Not Interested", "Connected - Callback":
			assert.Equal(t, "Working - Contacted", out.Status)
			assert.True(t, out.Connected)
			assert.False(t, out.Appointment)
		case "Appointment Booked":
			assert.Equal(t, "Qualified - Appointment", out.Status)
			assert.True(t, out.Connected)
			assert.True(t, out.Appointment)
		default:
			t.Fatalf("unexpected outcome label %q", out.Label)
		}
		assert.NotEmpty(t, out.Notes)
	}
}
