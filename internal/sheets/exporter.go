package sheets

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Exporter writes accumulated scores back to the progress column of the
// sheet. The sheet mirrors the database; a failed write is the caller's to
// log, never to retry inside an answer flow.
type Exporter struct {
	config SyncConfig
	mu     sync.Mutex
}

// NewExporter creates an exporter over the given sheet
func NewExporter(config SyncConfig) *Exporter {
	return &Exporter{config: config}
}

// UpdateProgress finds the row whose source column matches the phrase and
// writes the new total into the progress column
func (ex *Exporter) UpdateProgress(sourceText string, total float64) error {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	f, err := excelize.OpenFile(ex.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ex.config.SheetName)
	if err != nil {
		return fmt.Errorf("failed to get rows: %v", err)
	}

	sourceIdx := columnToIndex(ex.config.SourceColumn)
	rowNum := 0
	for i, row := range rows {
		if i < ex.config.StartRow-1 {
			continue
		}
		if sourceIdx < len(row) && strings.EqualFold(strings.TrimSpace(row[sourceIdx]), sourceText) {
			rowNum = i + 1
			break
		}
	}
	if rowNum == 0 {
		return fmt.Errorf("phrase %q not found in sheet", sourceText)
	}

	cell := fmt.Sprintf("%s%d", ex.config.ProgressColumn, rowNum)
	if err := f.SetCellValue(ex.config.SheetName, cell, total); err != nil {
		return fmt.Errorf("failed to set cell %s: %v", cell, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %v", err)
	}
	return nil
}
