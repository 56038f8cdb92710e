package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/phrasebot/internal/database"
	"github.com/example/phrasebot/internal/progress"
	"github.com/example/phrasebot/pkg/models"
)

// SyncConfig defines how the phrase sheet is read
type SyncConfig struct {
	FilePath       string // Path to the Excel workbook
	SheetName      string // Name of the sheet with phrases
	DateColumn     string // Column with the date the phrase was added
	SourceColumn   string // Column with the phrase in the source language
	TargetColumn   string // Column with the reference translation
	ContextColumn  string // Column with an example sentence
	ProgressColumn string // Column with the accumulated score
	StartRow       int    // The row to start from (1-based index)
}

// DefaultSyncConfig returns the column layout the sheet uses
func DefaultSyncConfig(path string) SyncConfig {
	return SyncConfig{
		FilePath:       path,
		SheetName:      "Sheet1",
		DateColumn:     "A",
		SourceColumn:   "B",
		TargetColumn:   "C",
		ContextColumn:  "D",
		ProgressColumn: "E",
		StartRow:       2,
	}
}

// SyncResult holds the result of a sync operation
type SyncResult struct {
	TotalProcessed int
	Added          int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer pulls phrases from the sheet into the database. Running it twice
// over an unchanged sheet is a no-op.
type Importer struct {
	config  SyncConfig
	phrases *database.PhraseRepository
}

// NewImporter creates an importer over the given sheet
func NewImporter(config SyncConfig) *Importer {
	return &Importer{
		config:  config,
		phrases: database.NewPhraseRepository(),
	}
}

// Sync reads every row of the sheet and upserts it by source text. New
// phrases are created with their sheet progress seeded; existing phrases get
// their translation and context refreshed but their progress is never
// touched.
func (im *Importer) Sync(ctx context.Context) (*SyncResult, error) {
	var rows [][]string
	var err error

	if strings.ToLower(filepath.Ext(im.config.FilePath)) == ".csv" {
		rows, err = im.readCSV()
	} else {
		rows, err = im.readWorkbook()
	}
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Errors: make([]string, 0)}

	for i, row := range rows {
		if i < im.config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		if err := im.processRow(ctx, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

func (im *Importer) readWorkbook() ([][]string, error) {
	f, err := excelize.OpenFile(im.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(im.config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func (im *Importer) readCSV() ([][]string, error) {
	file, err := os.Open(im.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %v", err)
	}
	return rows, nil
}

func (im *Importer) processRow(ctx context.Context, row []string, result *SyncResult) error {
	source := cellValue(row, im.config.SourceColumn)
	target := cellValue(row, im.config.TargetColumn)
	example := cellValue(row, im.config.ContextColumn)
	progressCell := cellValue(row, im.config.ProgressColumn)

	if source == "" || target == "" {
		result.Skipped++
		return nil
	}

	existing, err := im.phrases.GetBySourceText(ctx, source)
	if err != nil && !errors.Is(err, database.ErrPhraseNotFound) {
		return fmt.Errorf("failed to look up phrase: %v", err)
	}

	if existing != nil {
		if existing.TargetText == target && existing.Context == example {
			result.Skipped++
			return nil
		}
		existing.TargetText = target
		existing.Context = example
		existing.Difficulty = DeriveDifficulty(source)
		if err := im.phrases.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update phrase: %v", err)
		}
		result.Updated++
		return nil
	}

	phrase := &models.Phrase{
		SourceText: source,
		TargetText: target,
		Context:    example,
		Difficulty: DeriveDifficulty(source),
	}
	if err := im.phrases.Create(ctx, phrase); err != nil {
		return fmt.Errorf("failed to create phrase: %v", err)
	}
	result.Added++

	if total, ok := parseProgress(progressCell); ok && total > 0 {
		if err := im.phrases.SeedProgress(ctx, phrase.ID, total, progress.DefaultMasteryThreshold); err != nil {
			return fmt.Errorf("failed to seed progress: %v", err)
		}
	}
	return nil
}

// DeriveDifficulty classifies a phrase by its word count
func DeriveDifficulty(source string) string {
	words := len(strings.Fields(source))
	switch {
	case words <= 3:
		return models.DifficultyEasy
	case words <= 8:
		return models.DifficultyMedium
	default:
		return models.DifficultyHard
	}
}

func parseProgress(cell string) (float64, bool) {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, ",", "."))
	if cell == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(cell, 64)
	if err != nil || val < 0 {
		return 0, false
	}
	return val, true
}

func cellValue(row []string, column string) string {
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
