package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Timeout for a single database or grading call
	RequestTimeout time.Duration
	// Long-poll timeout for the Telegram updates channel, in seconds
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		RequestTimeout: 60 * time.Second,
		UpdateTimeout:  60,
	}
}
