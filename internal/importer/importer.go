// Package importer loads phrase pairs in bulk from delimited text or XLSX
// files into a single category.
package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lembra/internal/database"
	"github.com/example/lembra/pkg/models"
)

// Result holds the outcome of one import batch
type Result struct {
	TotalRows  int    `json:"total_rows"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
	CategoryID string `json:"category_id"`
}

// Importer writes imported cards into the store
type Importer struct {
	cards      *database.CardRepository
	categories *database.CategoryRepository
	// Delimiter splits fields within a row; defaults to ","
	Delimiter string
}

// New creates an importer with the default comma delimiter
func New(cards *database.CardRepository, categories *database.CategoryRepository) *Importer {
	return &Importer{cards: cards, categories: categories, Delimiter: ","}
}

// ImportFile dispatches on the file extension: .xlsx goes through the
// spreadsheet path, everything else is treated as delimited text.
func (im *Importer) ImportFile(ctx context.Context, filename string, r io.Reader, categoryName string) (*Result, error) {
	if strings.ToLower(filepath.Ext(filename)) == ".xlsx" {
		return im.ImportXLSX(ctx, r, categoryName)
	}
	return im.ImportDelimited(ctx, r, categoryName)
}

// ImportDelimited reads newline-separated rows of
// (portuguese, russian, optional verbs, optional explanation). Rows missing
// either required field are skipped silently; no partial-row error is
// surfaced. Splitting is plain, without CSV quoting rules.
func (im *Importer) ImportDelimited(ctx context.Context, r io.Reader, categoryName string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import data: %w", err)
	}

	delimiter := im.Delimiter
	if delimiter == "" {
		delimiter = ","
	}

	var rows [][]string
	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, delimiter)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, fields)
	}

	return im.importRows(ctx, rows, categoryName)
}

// ImportXLSX reads the same tuple from the first sheet of a spreadsheet
func (im *Importer) ImportXLSX(ctx context.Context, r io.Reader, categoryName string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	for i := range rows {
		for j := range rows[i] {
			rows[i][j] = strings.TrimSpace(rows[i][j])
		}
	}

	return im.importRows(ctx, rows, categoryName)
}

// importRows attributes every valid row to one category and refreshes the
// category's word count once at the end of the batch, not per row
func (im *Importer) importRows(ctx context.Context, rows [][]string, categoryName string) (*Result, error) {
	category, err := im.categories.GetByName(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	if category == nil {
		category, err = im.categories.Create(ctx, categoryName)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{CategoryID: category.ID}
	for _, fields := range rows {
		result.TotalRows++

		var portuguese, russian, verbs, explanation string
		if len(fields) > 0 {
			portuguese = fields[0]
		}
		if len(fields) > 1 {
			russian = fields[1]
		}
		if len(fields) > 2 {
			verbs = fields[2]
		}
		if len(fields) > 3 {
			explanation = fields[3]
		}

		if portuguese == "" || russian == "" {
			result.Skipped++
			continue
		}

		card := &models.FlashCard{
			Portuguese:  portuguese,
			Russian:     russian,
			Verbs:       verbs,
			Explanation: explanation,
			CategoryID:  category.ID,
		}
		if err := im.cards.Create(ctx, card); err != nil {
			return nil, err
		}
		result.Imported++
	}

	count, err := im.cards.CountByCategory(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	if err := im.categories.UpdateWordCount(ctx, category.ID, count); err != nil {
		return nil, err
	}

	return result, nil
}
