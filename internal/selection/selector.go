package selection

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/example/phrasebot/pkg/models"
)

// Policy chooses how the next phrase is drawn from the eligible pool
type Policy string

const (
	// PolicyUniform draws every eligible phrase with equal probability
	PolicyUniform Policy = "uniform"
	// PolicyWeighted biases toward recently added phrases
	PolicyWeighted Policy = "weighted"
)

const (
	defaultNewPhrasePriority = 3.0
	defaultDecayDays         = 7.0
)

// Selector draws phrases for exercises. Safe for concurrent use.
type Selector struct {
	// NewPhrasePriority is the weight multiplier for a phrase added just now
	NewPhrasePriority float64
	// DecayDays is the e-folding time of the recency bonus
	DecayDays float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a selector with default weighting parameters
func New() *Selector {
	return &Selector{
		NewPhrasePriority: defaultNewPhrasePriority,
		DecayDays:         defaultDecayDays,
		rnd:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SelectUniform picks one phrase uniformly at random, or nil for an empty pool
func (s *Selector) SelectUniform(phrases []models.Phrase) *models.Phrase {
	if len(phrases) == 0 {
		return nil
	}
	s.mu.Lock()
	idx := s.rnd.Intn(len(phrases))
	s.mu.Unlock()
	return &phrases[idx]
}

// SelectWeighted picks one phrase with probability proportional to its
// recency weight. Phrases added recently are favored; the bonus decays
// toward a floor of 1.0 so old phrases always stay reachable.
func (s *Selector) SelectWeighted(now time.Time, phrases []models.Phrase) *models.Phrase {
	if len(phrases) == 0 {
		return nil
	}

	weights := make([]float64, len(phrases))
	total := 0.0
	for i, p := range phrases {
		weights[i] = s.weight(now, p)
		total += weights[i]
	}
	if total <= 0 {
		return s.SelectUniform(phrases)
	}

	s.mu.Lock()
	target := s.rnd.Float64() * total
	s.mu.Unlock()

	cumulative := 0.0
	for i := range phrases {
		cumulative += weights[i]
		if target < cumulative {
			return &phrases[i]
		}
	}
	return &phrases[len(phrases)-1]
}

func (s *Selector) weight(now time.Time, p models.Phrase) float64 {
	ageDays := 0.0
	if !p.DateAdded.IsZero() {
		ageDays = now.Sub(p.DateAdded).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
	}
	w := s.NewPhrasePriority * math.Exp(-ageDays/s.DecayDays)
	return math.Max(1.0, w)
}
