package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/phrasebot/internal/database"
)

// Default quiet-hours window for automatic exercise delivery
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
	DefaultSyncIntervalHours     = 6
)

// Notifier delivers an exercise to a user, implemented by the bot
type Notifier interface {
	SendExercise(userID int64) error
}

// Syncer refreshes the phrase pool from the sheet
type Syncer interface {
	SyncFeed() error
}

// Scheduler runs the periodic jobs: exercise delivery and sheet sync. The
// two jobs are independent; a failing sync never blocks delivery.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	syncer    Syncer
	settings  *database.SettingsRepository
}

// New creates a new scheduler instance. Syncer may be nil when no sheet is
// configured.
func New(notifier Notifier, syncer Syncer) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		syncer:    syncer,
		settings:  database.NewSettingsRepository(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.dispatchExercises)

	if s.syncer != nil {
		s.scheduler.Every(syncIntervalHours()).Hours().Do(s.runSync)
	}

	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// dispatchExercises sends an exercise to every user whose auto delivery is
// enabled and whose interval has elapsed, within the allowed hours
func (s *Scheduler) dispatchExercises() {
	now := time.Now()
	currentHour := now.Hour()

	startHour := envHour("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := envHour("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside delivery hours (%d-%d), skipping",
			currentHour, startHour, endHour)
		return
	}

	ctx := context.Background()
	users, err := s.settings.ListAutoSendEnabled(ctx)
	if err != nil {
		log.Printf("Error listing users for delivery: %v", err)
		return
	}

	for _, user := range users {
		if user.LastSentAt != nil {
			elapsed := now.Sub(*user.LastSentAt)
			if elapsed < time.Duration(user.SendIntervalHours)*time.Hour {
				continue
			}
		}

		if err := s.notifier.SendExercise(user.UserID); err != nil {
			log.Printf("Error sending exercise to user %d: %v", user.UserID, err)
			continue
		}
		if err := s.settings.UpdateLastSent(ctx, user.UserID); err != nil {
			log.Printf("Error updating last sent time for user %d: %v", user.UserID, err)
		}
	}
}

// runSync pulls fresh phrases from the sheet
func (s *Scheduler) runSync() {
	if err := s.syncer.SyncFeed(); err != nil {
		log.Printf("Scheduled sync failed: %v", err)
	}
}

func syncIntervalHours() int {
	if v := os.Getenv("SYNC_INTERVAL_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			return h
		}
	}
	return DefaultSyncIntervalHours
}

func envHour(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
