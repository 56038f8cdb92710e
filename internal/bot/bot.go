package bot

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/phrasebot/internal/database"
	"github.com/example/phrasebot/internal/learning"
	"github.com/example/phrasebot/internal/selection"
	"github.com/example/phrasebot/internal/sheets"
	"github.com/example/phrasebot/pkg/models"
)

// Bot represents the Telegram bot application
type Bot struct {
	api           *tgbotapi.BotAPI
	token         string
	engine        *learning.Engine
	importer      *sheets.Importer
	settings      *database.SettingsRepository
	config        *BotConfig
	allowedUserID int64
}

// New creates a new bot instance. Importer may be nil when no sheet is
// configured; /sync then reports that sync is unavailable.
func New(engine *learning.Engine, importer *sheets.Importer) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	if database.DB == nil {
		return nil, fmt.Errorf("database connection is not established")
	}

	bot := &Bot{
		token:    token,
		engine:   engine,
		importer: importer,
		settings: database.NewSettingsRepository(),
		config:   DefaultConfig(),
	}

	if idStr := os.Getenv("ALLOWED_USER_ID"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOWED_USER_ID: %v", err)
		}
		bot.allowedUserID = id
	}

	return bot, nil
}

// Start connects to Telegram and processes updates until the context is
// cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}

	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	if err := b.engine.LoadPending(ctx); err != nil {
		log.Printf("Failed to restore pending exercises: %v", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(update)
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	message := update.Message

	if b.allowedUserID != 0 && message.From.ID != b.allowedUserID {
		log.Printf("Ignoring message from unauthorized user %d", message.From.ID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.config.RequestTimeout)
	defer cancel()

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.handleStart(message)
		case "help":
			b.handleHelp(message)
		case "phrase":
			b.handlePhrase(ctx, message, models.DirectionSourceToTarget)
		case "reverse":
			b.handlePhrase(ctx, message, models.DirectionTargetToSource)
		case "sync":
			b.handleSync(ctx, message)
		case "stats":
			b.handleStats(ctx, message)
		case "auto":
			b.handleAuto(ctx, message)
		case "interval":
			b.handleInterval(ctx, message)
		default:
			b.reply(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
		}
		return
	}

	b.handleAnswer(ctx, message)
}

// SendExercise implements the scheduler.Notifier interface by pushing a
// weighted-random exercise to the user
func (b *Bot) SendExercise(userID int64) error {
	if b.api == nil {
		return fmt.Errorf("bot is not connected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.config.RequestTimeout)
	defer cancel()

	direction := models.DirectionSourceToTarget
	if rand.Intn(2) == 1 {
		direction = models.DirectionTargetToSource
	}

	view, err := b.engine.GetNextPhrase(ctx, userID, selection.PolicyWeighted, direction)
	if err != nil {
		return err
	}
	if view == nil {
		log.Printf("No phrases left for user %d, skipping delivery", userID)
		return nil
	}

	return b.sendExerciseMessage(userID, view)
}

// SyncFeed implements the scheduler.Syncer interface
func (b *Bot) SyncFeed() error {
	if b.importer == nil {
		return fmt.Errorf("no phrase sheet configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.config.RequestTimeout)
	defer cancel()

	result, err := b.importer.Sync(ctx)
	if err != nil {
		return err
	}
	log.Printf("Sheet sync: %d processed, %d added, %d updated, %d skipped, %d errors",
		result.TotalProcessed, result.Added, result.Updated, result.Skipped, len(result.Errors))
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}
