package sheets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/phrasebot/internal/database"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATABASE_PATH", ":memory:")
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })
}

// writeWorkbook creates a temp sheet with the standard column layout
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phrases.xlsx")

	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Date", "Phrase", "Translation", "Example", "Progress"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSyncImportsNewPhrases(t *testing.T) {
	setupTestDB(t)
	path := writeWorkbook(t, [][]interface{}{
		{"2026-01-10", "call it a day", "закончить на сегодня", "Let's call it a day.", ""},
		{"2026-01-11", "a very long idiom that goes on and on for quite a while", "длинная идиома", "", "2"},
	})

	importer := NewImporter(DefaultSyncConfig(path))
	result, err := importer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 2, result.Added)
	assert.Empty(t, result.Errors)

	ctx := context.Background()
	repo := database.NewPhraseRepository()

	first, err := repo.GetBySourceText(ctx, "call it a day")
	require.NoError(t, err)
	assert.Equal(t, "закончить на сегодня", first.TargetText)
	assert.Equal(t, "Let's call it a day.", first.Context)
	assert.Equal(t, 0.0, first.TotalScore)

	second, err := repo.GetBySourceText(ctx, "a very long idiom that goes on and on for quite a while")
	require.NoError(t, err)
	assert.Equal(t, 2.0, second.TotalScore)
	assert.False(t, second.Learned)
}

func TestSyncSeedsLearnedPhrases(t *testing.T) {
	setupTestDB(t)
	path := writeWorkbook(t, [][]interface{}{
		{"2026-01-10", "mastered phrase", "выученная фраза", "", "3"},
	})

	_, err := NewImporter(DefaultSyncConfig(path)).Sync(context.Background())
	require.NoError(t, err)

	got, err := database.NewPhraseRepository().GetBySourceText(context.Background(), "mastered phrase")
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.TotalScore)
	assert.True(t, got.Learned)
}

func TestSyncIsIdempotent(t *testing.T) {
	setupTestDB(t)
	path := writeWorkbook(t, [][]interface{}{
		{"2026-01-10", "call it a day", "закончить на сегодня", "", "1"},
	})
	importer := NewImporter(DefaultSyncConfig(path))
	ctx := context.Background()

	_, err := importer.Sync(ctx)
	require.NoError(t, err)

	result, err := importer.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)

	// progress stays what the first import seeded
	got, err := database.NewPhraseRepository().GetBySourceText(ctx, "call it a day")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.TotalScore)
}

func TestSyncUpdatesChangedTranslation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	first := writeWorkbook(t, [][]interface{}{
		{"2026-01-10", "call it a day", "старый перевод", "", "2"},
	})
	_, err := NewImporter(DefaultSyncConfig(first)).Sync(ctx)
	require.NoError(t, err)

	second := writeWorkbook(t, [][]interface{}{
		{"2026-01-10", "call it a day", "закончить на сегодня", "", "2"},
	})
	result, err := NewImporter(DefaultSyncConfig(second)).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	got, err := database.NewPhraseRepository().GetBySourceText(ctx, "call it a day")
	require.NoError(t, err)
	assert.Equal(t, "закончить на сегодня", got.TargetText)
	// a refreshed translation never touches accumulated progress
	assert.Equal(t, 2.0, got.TotalScore)
}

func TestSyncSkipsIncompleteRows(t *testing.T) {
	setupTestDB(t)
	path := writeWorkbook(t, [][]interface{}{
		{"2026-01-10", "", "перевод без фразы", "", ""},
		{"2026-01-10", "phrase without translation", "", "", ""},
	})

	result, err := NewImporter(DefaultSyncConfig(path)).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 2, result.Skipped)
}

func TestSyncImportsFromCSV(t *testing.T) {
	setupTestDB(t)
	path := filepath.Join(t.TempDir(), "phrases.csv")
	csv := "Date,Phrase,Translation,Example,Progress\n" +
		"2026-01-10,call it a day,закончить на сегодня,Let's call it a day.,1\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	result, err := NewImporter(DefaultSyncConfig(path)).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)

	got, err := database.NewPhraseRepository().GetBySourceText(context.Background(), "call it a day")
	require.NoError(t, err)
	assert.Equal(t, "закончить на сегодня", got.TargetText)
	assert.Equal(t, 1.0, got.TotalScore)
}

func TestDeriveDifficulty(t *testing.T) {
	assert.Equal(t, "easy", DeriveDifficulty("break even"))
	assert.Equal(t, "medium", DeriveDifficulty("to make up one's mind about it"))
	assert.Equal(t, "hard", DeriveDifficulty("the early bird catches the worm but the second mouse gets the cheese"))
}

func TestExporterUpdateProgress(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"2026-01-10", "call it a day", "закончить на сегодня", "", "1"},
		{"2026-01-11", "break the ice", "растопить лёд", "", ""},
	})
	config := DefaultSyncConfig(path)

	exporter := NewExporter(config)
	require.NoError(t, exporter.UpdateProgress("break the ice", 1.5))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	val, err := f.GetCellValue("Sheet1", "E3")
	require.NoError(t, err)
	assert.Equal(t, "1.5", val)

	err = exporter.UpdateProgress("no such phrase", 1.0)
	assert.Error(t, err)
}
