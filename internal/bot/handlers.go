package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/phrasebot/internal/learning"
	"github.com/example/phrasebot/internal/scoring"
	"github.com/example/phrasebot/internal/selection"
	"github.com/example/phrasebot/pkg/models"
)

// handleStart greets the user and shows the command list
func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcomeText := `Welcome to the phrase trainer! 🎓

I'll send you phrases to translate and grade your answers.

/phrase - get a phrase to translate
/reverse - translate in the other direction
/stats - your progress
/help - all commands`

	b.reply(message.Chat.ID, welcomeText)
}

// handleHelp shows the full command reference
func (b *Bot) handleHelp(message *tgbotapi.Message) {
	helpText := `Available commands:

/phrase - translate a phrase into the target language
/reverse - translate a phrase back into the source language
/sync - pull new phrases from the sheet
/stats - show your learning statistics
/auto - toggle automatic exercise delivery
/interval N - deliver an exercise every N hours

Answer an exercise by simply typing your translation.`

	b.reply(message.Chat.ID, helpText)
}

// handlePhrase draws a new exercise and sends it. Requesting a new phrase
// discards an unanswered one.
func (b *Bot) handlePhrase(ctx context.Context, message *tgbotapi.Message, direction models.Direction) {
	userID := message.From.ID

	view, err := b.engine.GetNextPhrase(ctx, userID, selection.PolicyWeighted, direction)
	if err != nil {
		log.Printf("Error getting next phrase for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "Something went wrong, please try again.")
		return
	}
	if view == nil {
		b.reply(message.Chat.ID, "🎉 You've learned every phrase! Use /sync to pull in new ones.")
		return
	}

	if err := b.sendExerciseMessage(message.Chat.ID, view); err != nil {
		log.Printf("Error sending exercise to chat %d: %v", message.Chat.ID, err)
	}
}

// sendExerciseMessage formats and sends an exercise prompt
func (b *Bot) sendExerciseMessage(chatID int64, view *models.ExerciseView) error {
	var instruction string
	if view.Direction == models.DirectionTargetToSource {
		instruction = "Translate back to the original:"
	} else {
		instruction = "Translate this phrase:"
	}

	text := fmt.Sprintf("✍️ %s\n\n*%s*\n\n_difficulty: %s_",
		instruction, view.Prompt, view.Difficulty)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	_, err := b.api.Send(msg)
	return err
}

// handleAnswer grades free text against the user's pending exercise
func (b *Bot) handleAnswer(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	answer := strings.TrimSpace(message.Text)
	if answer == "" {
		return
	}

	result, err := b.engine.SubmitAnswer(ctx, userID, answer)
	if learning.IsNoPending(err) {
		b.reply(message.Chat.ID, "No exercise is waiting for an answer. Use /phrase to get one.")
		return
	}
	if err != nil {
		log.Printf("Error grading answer for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "Something went wrong, please try again.")
		return
	}

	b.replyMarkdown(message.Chat.ID, formatResult(result))
}

// formatResult renders the grading verdict for the chat
func formatResult(result *models.ScoreResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s Score: *%.1f*\n", scoring.Emoji(result.Score), result.Score))
	if result.Feedback != "" {
		sb.WriteString(result.Feedback + "\n")
	}
	if result.CorrectText != "" {
		sb.WriteString(fmt.Sprintf("\nReference: *%s*\n", result.CorrectText))
	}
	if len(result.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, s := range result.Suggestions {
			sb.WriteString("• " + s + "\n")
		}
	}
	if len(result.Alternatives) > 0 {
		sb.WriteString("\nAlso correct:\n")
		for _, a := range result.Alternatives {
			sb.WriteString("• " + a + "\n")
		}
	}
	if result.Note != "" {
		sb.WriteString("\n💡 " + result.Note + "\n")
	}

	if result.JustLearned {
		sb.WriteString("\n🏆 Phrase learned! It leaves the rotation.")
	} else {
		sb.WriteString(fmt.Sprintf("\nProgress: %.1f / %.1f", result.NewTotal, result.Threshold))
	}

	next := "/phrase"
	if result.Direction == models.DirectionSourceToTarget {
		next = "/reverse"
	}
	sb.WriteString(fmt.Sprintf("\nNext: %s", next))
	return sb.String()
}

// handleSync pulls phrases from the sheet on demand
func (b *Bot) handleSync(ctx context.Context, message *tgbotapi.Message) {
	if b.importer == nil {
		b.reply(message.Chat.ID, "No phrase sheet is configured.")
		return
	}

	result, err := b.importer.Sync(ctx)
	if err != nil {
		log.Printf("Manual sync failed: %v", err)
		b.reply(message.Chat.ID, "Sync failed, please try again.")
		return
	}

	text := fmt.Sprintf("📥 Sync finished:\n- Added: %d\n- Updated: %d\n- Skipped: %d",
		result.Added, result.Updated, result.Skipped)
	if len(result.Errors) > 0 {
		text += fmt.Sprintf("\n- Errors: %d", len(result.Errors))
	}
	b.reply(message.Chat.ID, text)
}

// handleStats shows the learning overview
func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
	stats, err := b.engine.Stats(ctx, message.From.ID)
	if err != nil {
		log.Printf("Error getting statistics for user %d: %v", message.From.ID, err)
		b.reply(message.Chat.ID, "Statistics are unavailable right now.")
		return
	}

	text := "📊 *Your statistics*\n\n" +
		fmt.Sprintf("Phrases in rotation: %d\n", stats.TotalPhrases-stats.LearnedPhrases) +
		fmt.Sprintf("Phrases learned: %d of %d (%.0f%%)\n", stats.LearnedPhrases, stats.TotalPhrases, stats.LearningRate) +
		fmt.Sprintf("Answers given: %d\n", stats.TotalAttempts)
	if stats.TotalAttempts > 0 {
		text += fmt.Sprintf("Average score: %.2f\n", stats.AverageScore)
	}

	b.replyMarkdown(message.Chat.ID, text)
}

// handleAuto toggles automatic exercise delivery
func (b *Bot) handleAuto(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	settings, err := b.settings.GetOrCreate(ctx, userID)
	if err != nil {
		log.Printf("Error getting settings for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "Something went wrong, please try again.")
		return
	}

	enabled := !settings.AutoSendEnabled
	if err := b.settings.SetAutoSend(ctx, userID, enabled); err != nil {
		log.Printf("Error updating auto send for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "Something went wrong, please try again.")
		return
	}

	if enabled {
		b.reply(message.Chat.ID, fmt.Sprintf("✅ Automatic delivery is on, every %d hour(s).", settings.SendIntervalHours))
	} else {
		b.reply(message.Chat.ID, "Automatic delivery is off.")
	}
}

// handleInterval sets the delivery interval in hours
func (b *Bot) handleInterval(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	arg := strings.TrimSpace(message.CommandArguments())
	hours, err := strconv.Atoi(arg)
	if err != nil || hours < 1 || hours > 24 {
		b.reply(message.Chat.ID, "Usage: /interval N, where N is 1 to 24 hours.")
		return
	}

	if err := b.settings.SetInterval(ctx, userID, hours); err != nil {
		log.Printf("Error updating interval for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "Something went wrong, please try again.")
		return
	}

	b.reply(message.Chat.ID, fmt.Sprintf("⏰ Exercises will arrive every %d hour(s).", hours))
}
