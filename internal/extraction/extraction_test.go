package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTextRejectsNonPDF(t *testing.T) {
	_, err := ReadText([]byte("this is not a pdf"))
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestReadTextRejectsEmptyInput(t *testing.T) {
	_, err := ReadText(nil)
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestReadTextRejectsCorruptPDF(t *testing.T) {
	// Valid header, garbage body. Must fail cleanly, not panic.
	_, err := ReadText([]byte("%PDF-1.7\nnot actually a document"))
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestExtractSurfacesUnreadableDocument(t *testing.T) {
	e := NewExtractor(NewHeuristicSegmenter(), 50)

	_, err := e.Extract(context.Background(), []byte("junk bytes"))
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestNormalizeText(t *testing.T) {
	in := "  Title\x00 with\x07 control \tchars  \r\nand   runs\n\n\n\nof blanks  "
	out := normalizeText(in)

	assert.Equal(t, "Title with control chars\nand runs\n\nof blanks", out)
}

func TestNormalizeRecordDropsNamelessInventors(t *testing.T) {
	record := normalizeRecord(CandidateRecord{
		Title: "  Widget  ",
		Inventors: []CandidateInventor{
			{Name: "  Jane Doe ", Email: " jane@example.com "},
			{Name: "   ", Email: "ghost@example.com"},
		},
	})

	assert.Equal(t, "Widget", record.Title)
	require.Len(t, record.Inventors, 1)
	assert.Equal(t, "Jane Doe", record.Inventors[0].Name)
	assert.Equal(t, "jane@example.com", record.Inventors[0].Email)
}

func TestNormalizeRecordKeepsEmptyFieldsEmpty(t *testing.T) {
	record := normalizeRecord(CandidateRecord{})

	assert.Empty(t, record.Title)
	assert.Empty(t, record.Description)
	assert.Empty(t, record.KeyDifferences)
	assert.NotNil(t, record.Inventors)
	assert.Empty(t, record.Inventors)
}
