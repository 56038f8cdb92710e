package database

import (
	"context"
	"fmt"

	"github.com/example/phrasebot/pkg/models"
)

// StatsRepository aggregates learning statistics over phrases and attempts
type StatsRepository struct{}

// NewStatsRepository creates a new repository instance
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

// GetUserStatistics computes the overview shown by /stats
func (r *StatsRepository) GetUserStatistics(ctx context.Context, userID int64) (*models.Statistics, error) {
	stats := &models.Statistics{}

	err := DB.GetContext(ctx, &stats.TotalPhrases,
		"SELECT COUNT(*) FROM phrases WHERE is_active")
	if err != nil {
		return nil, fmt.Errorf("failed to count phrases: %v", err)
	}

	err = DB.GetContext(ctx, &stats.LearnedPhrases,
		"SELECT COUNT(*) FROM phrases WHERE is_active AND learned")
	if err != nil {
		return nil, fmt.Errorf("failed to count learned phrases: %v", err)
	}

	if stats.TotalPhrases > 0 {
		stats.LearningRate = float64(stats.LearnedPhrases) / float64(stats.TotalPhrases) * 100
	}

	err = DB.GetContext(ctx, &stats.TotalAttempts,
		"SELECT COUNT(*) FROM attempts WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %v", err)
	}

	if stats.TotalAttempts > 0 {
		err = DB.GetContext(ctx, &stats.AverageScore,
			"SELECT AVG(score) FROM attempts WHERE user_id = $1", userID)
		if err != nil {
			return nil, fmt.Errorf("failed to average scores: %v", err)
		}
	}

	return stats, nil
}
