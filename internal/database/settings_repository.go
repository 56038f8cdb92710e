package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/phrasebot/pkg/models"
)

// SettingsRepository handles per-user delivery settings (/auto, /interval)
type SettingsRepository struct{}

// NewSettingsRepository creates a new repository instance
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// GetOrCreate returns the settings row for a user, inserting defaults when
// the user has none yet
func (r *SettingsRepository) GetOrCreate(ctx context.Context, userID int64) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := DB.GetContext(ctx, &settings, "SELECT * FROM user_settings WHERE user_id = $1", userID)
	if err == nil {
		return &settings, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get user settings: %v", err)
	}

	_, err = DB.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, auto_send_enabled, send_interval_hours, created_at, updated_at)
		VALUES ($1, FALSE, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user settings: %v", err)
	}

	err = DB.GetContext(ctx, &settings, "SELECT * FROM user_settings WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read user settings back: %v", err)
	}
	return &settings, nil
}

// SetAutoSend toggles automatic exercise delivery for a user
func (r *SettingsRepository) SetAutoSend(ctx context.Context, userID int64, enabled bool) error {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	_, err := DB.ExecContext(ctx, `
		UPDATE user_settings
		SET auto_send_enabled = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $2
	`, enabled, userID)
	if err != nil {
		return fmt.Errorf("failed to update auto send: %v", err)
	}
	return nil
}

// SetInterval sets the delivery interval in hours
func (r *SettingsRepository) SetInterval(ctx context.Context, userID int64, hours int) error {
	if hours < 1 {
		return fmt.Errorf("interval must be at least 1 hour, got %d", hours)
	}
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	_, err := DB.ExecContext(ctx, `
		UPDATE user_settings
		SET send_interval_hours = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $2
	`, hours, userID)
	if err != nil {
		return fmt.Errorf("failed to update interval: %v", err)
	}
	return nil
}

// ListAutoSendEnabled returns settings for every user with delivery enabled
func (r *SettingsRepository) ListAutoSendEnabled(ctx context.Context) ([]models.UserSettings, error) {
	var settings []models.UserSettings
	err := DB.SelectContext(ctx, &settings, "SELECT * FROM user_settings WHERE auto_send_enabled")
	if err != nil {
		return nil, fmt.Errorf("failed to list auto send users: %v", err)
	}
	return settings, nil
}

// UpdateLastSent records the time an exercise was dispatched to a user
func (r *SettingsRepository) UpdateLastSent(ctx context.Context, userID int64) error {
	_, err := DB.ExecContext(ctx, `
		UPDATE user_settings
		SET last_sent_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to update last sent time: %v", err)
	}
	return nil
}
