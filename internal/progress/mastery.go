package progress

import (
	"context"
	"sync"

	"github.com/example/phrasebot/pkg/models"
)

// DefaultMasteryThreshold is the cumulative score at which a phrase is
// considered learned and retired from rotation.
const DefaultMasteryThreshold = 3.0

// Store is the persistence hook the tracker applies score deltas through.
type Store interface {
	ApplyScore(ctx context.Context, phraseID int64, score, threshold float64) (*models.ProgressUpdate, error)
}

// Tracker serializes progress updates per process so two answers scored at
// the same moment cannot both read the same starting total.
type Tracker struct {
	Threshold float64

	store Store
	mu    sync.Mutex
}

// NewTracker creates a tracker over the given store
func NewTracker(store Store) *Tracker {
	return &Tracker{
		Threshold: DefaultMasteryThreshold,
		store:     store,
	}
}

// Record adds a normalized score to a phrase's cumulative total and reports
// whether the phrase just crossed the mastery threshold.
func (t *Tracker) Record(ctx context.Context, phraseID int64, score float64) (*models.ProgressUpdate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.ApplyScore(ctx, phraseID, score, t.Threshold)
}
