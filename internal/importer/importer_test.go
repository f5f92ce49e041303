package importer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/lembra/internal/database"
)

func setupImporter(t *testing.T) *Importer {
	t.Helper()
	require.NoError(t, database.Open("sqlite3", ":memory:"))
	t.Cleanup(func() { _ = database.Close() })
	return New(database.NewCardRepository(), database.NewCategoryRepository())
}

func TestImportDelimitedSkipsIncompleteRows(t *testing.T) {
	im := setupImporter(t)
	ctx := context.Background()

	input := "Olá,Привет\n,БезОригинала\nTchau,Пока\n\nSó português,\n"
	result, err := im.ImportDelimited(ctx, strings.NewReader(input), "Saudações")
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows, "blank lines are not rows")
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Skipped)

	cards, err := database.NewCardRepository().GetByCategory(ctx, result.CategoryID)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	category, err := database.NewCategoryRepository().GetByID(ctx, result.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, "Saudações", category.Name)
	assert.Equal(t, 2, category.WordCount, "word count is refreshed after the batch")
}

func TestImportDelimitedOptionalFields(t *testing.T) {
	im := setupImporter(t)
	ctx := context.Background()

	input := "Eu vou à praia,Я иду на пляж,ir,conversational future uses ir + infinitive\n"
	result, err := im.ImportDelimited(ctx, strings.NewReader(input), "Praia")
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	cards, err := database.NewCardRepository().GetByCategory(ctx, result.CategoryID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "ir", cards[0].Verbs)
	assert.Contains(t, cards[0].Explanation, "infinitive")
}

func TestImportDelimitedCustomDelimiter(t *testing.T) {
	im := setupImporter(t)
	im.Delimiter = ";"
	ctx := context.Background()

	input := "Olá, tudo bem?;Привет, как дела?\n"
	result, err := im.ImportDelimited(ctx, strings.NewReader(input), "Frases")
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	cards, err := database.NewCardRepository().GetByCategory(ctx, result.CategoryID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Olá, tudo bem?", cards[0].Portuguese, "commas inside fields survive a semicolon delimiter")
}

func TestImportReusesExistingCategory(t *testing.T) {
	im := setupImporter(t)
	ctx := context.Background()

	first, err := im.ImportDelimited(ctx, strings.NewReader("Um,Один\n"), "Números")
	require.NoError(t, err)
	second, err := im.ImportDelimited(ctx, strings.NewReader("Dois,Два\nTrês,Три\n"), "Números")
	require.NoError(t, err)

	assert.Equal(t, first.CategoryID, second.CategoryID)

	category, err := database.NewCategoryRepository().GetByID(ctx, first.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, 3, category.WordCount)
}

func TestImportXLSX(t *testing.T) {
	im := setupImporter(t)
	ctx := context.Background()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Bom dia"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Доброе утро"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Boa noite"))
	// B2 left empty, the row must be skipped
	require.NoError(t, f.SetCellValue(sheet, "A3", "Até logo"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "До скорого"))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := im.ImportXLSX(ctx, &buf, "Planilha")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestImportFileDispatchesOnExtension(t *testing.T) {
	im := setupImporter(t)
	ctx := context.Background()

	result, err := im.ImportFile(ctx, "cards.csv", strings.NewReader("Sim,Да\n"), "Arquivo")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	// A broken spreadsheet is an error, not silently treated as text
	_, err = im.ImportFile(ctx, "cards.xlsx", strings.NewReader("not a zip"), "Arquivo")
	assert.Error(t, err)
}
