package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/phrasebot/internal/ai"
	"github.com/example/phrasebot/internal/bot"
	"github.com/example/phrasebot/internal/database"
	"github.com/example/phrasebot/internal/learning"
	"github.com/example/phrasebot/internal/scheduler"
	"github.com/example/phrasebot/internal/sheets"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var oracle learning.Oracle
	if os.Getenv("OPENAI_API_KEY") != "" {
		analyzer, err := ai.New()
		if err != nil {
			log.Printf("Grading oracle unavailable, using lexical fallback: %v", err)
		} else {
			oracle = analyzer
		}
	} else {
		log.Println("OPENAI_API_KEY is not set, grading with lexical fallback only")
	}

	var importer *sheets.Importer
	var exporter learning.Exporter
	if sheetPath := os.Getenv("PHRASE_SHEET_PATH"); sheetPath != "" {
		config := sheets.DefaultSyncConfig(sheetPath)
		importer = sheets.NewImporter(config)
		// progress write-back needs cell writes, csv feeds are import only
		if strings.ToLower(filepath.Ext(sheetPath)) != ".csv" {
			exporter = sheets.NewExporter(config)
		}
	} else {
		log.Println("PHRASE_SHEET_PATH is not set, sheet sync disabled")
	}

	engine := learning.NewEngine(oracle, exporter)

	b, err := bot.New(engine, importer)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	var sched *scheduler.Scheduler
	if os.Getenv("ENABLE_SCHEDULER") != "false" {
		var syncer scheduler.Syncer
		if importer != nil {
			syncer = b
		}
		sched = scheduler.New(b, syncer)
		sched.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		if sched != nil {
			sched.Stop()
		}
		b.Stop()
		cancel()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Bot stopped successfully")
}
