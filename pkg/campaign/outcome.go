package campaign

import (
	"math/rand"
	"sync"
)

// Outcome is the classified result of one dial attempt
type Outcome struct {
	Label       string
	Status      string
	Notes       string
	Connected   bool
	Appointment bool
}

// Classifier decides the result of a dial attempt. Implementations
// must be safe for concurrent use.
type Classifier interface {
	Classify(lead Lead) Outcome
}

// outcomeTable holds the weighted draw used by the simulator. Weights
// sum to 100 so the cumulative scan reads as percentages.
var outcomeTable = []struct {
	weight  int
	outcome Outcome
}{
	{40, Outcome{
		Label:  "Voicemail",
		Status: "Open - Not Contacted",
		Notes:  "Left voicemail about refinance rates.",
	}},
	{30, Outcome{
		Label:     "Connected - Not Interested",
		Status:    "Working - Contacted",
		Notes:     "Client happy with current rate.",
		Connected: true,
	}},
	{20, Outcome{
		Label:     "Connected - Callback",
		Status:    "Working - Contacted",
		Notes:     "Requested callback next Tuesday.",
		Connected: true,
	}},
	{10, Outcome{
		Label:       "Appointment Booked",
		Status:      "Qualified - Appointment",
		Notes:       "Scheduled consultation for refinance!",
		Connected:   true,
		Appointment: true,
	}},
}

// WeightedSimulator draws outcomes from a fixed distribution:
// 40% voicemail, 30% not interested, 20% callback, 10% appointment.
type WeightedSimulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewWeightedSimulator returns a simulator seeded from src. A nil src
// uses a time-based seed.
func NewWeightedSimulator(src rand.Source) *WeightedSimulator {
	if src == nil {
		src = rand.NewSource(rand.Int63())
	}
	return &WeightedSimulator{rng: rand.New(src)}
}

func (s *WeightedSimulator) Classify(_ Lead) Outcome {
	s.mu.Lock()
	n := s.rng.Intn(100)
	s.mu.Unlock()

	for _, row := range outcomeTable {
		if n < row.weight {
			return row.outcome
		}
		n -= row.weight
	}
	// unreachable: weights cover [0,100)
	return outcomeTable[0].outcome
}
