package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `Title: Self-Adjusting Widget Clamp

Description:
A clamp that senses widget diameter and adjusts its jaws automatically.
It removes the need for manual calibration between production runs.

Key Differences:
- Continuous feedback loop instead of preset jaw positions
- No operator intervention required

Inventors:
- Jane Doe <jane.doe@example.com>
- Bob Smith (bob@example.com)
`

func TestHeuristicSegmenterLabeledSections(t *testing.T) {
	s := NewHeuristicSegmenter()

	record, err := s.Segment(context.Background(), sampleDocument)
	require.NoError(t, err)

	assert.Equal(t, "Self-Adjusting Widget Clamp", record.Title)
	assert.Contains(t, record.Description, "senses widget diameter")
	assert.Contains(t, record.Description, "manual calibration")
	assert.Contains(t, record.KeyDifferences, "Continuous feedback loop")

	require.Len(t, record.Inventors, 2)
	assert.Equal(t, "Jane Doe", record.Inventors[0].Name)
	assert.Equal(t, "jane.doe@example.com", record.Inventors[0].Email)
	assert.Equal(t, "Bob Smith", record.Inventors[1].Name)
	assert.Equal(t, "bob@example.com", record.Inventors[1].Email)
}

func TestHeuristicSegmenterMissingSections(t *testing.T) {
	s := NewHeuristicSegmenter()

	record, err := s.Segment(context.Background(), "Description:\nJust a description, nothing else.\n")
	require.NoError(t, err)

	assert.Empty(t, record.Title)
	assert.Equal(t, "Just a description, nothing else.", record.Description)
	assert.Empty(t, record.KeyDifferences)
	assert.Empty(t, record.Inventors)
}

func TestHeuristicSegmenterNoSectionsAtAll(t *testing.T) {
	s := NewHeuristicSegmenter()

	record, err := s.Segment(context.Background(), "Completely unstructured prose that mentions nothing useful.")
	require.NoError(t, err)

	// A short leading line doubles as the title when nothing is labeled.
	assert.Equal(t, "Completely unstructured prose that mentions nothing useful.", record.Title)
	assert.Empty(t, record.Description)
	assert.Empty(t, record.KeyDifferences)
	assert.Empty(t, record.Inventors)
}

func TestHeuristicSegmenterInlineHeadingValues(t *testing.T) {
	s := NewHeuristicSegmenter()

	text := "Title: Compact Heat Sink\nSummary: Dissipates heat through stacked fins.\nNovelty: Fin stacking pattern.\n"
	record, err := s.Segment(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "Compact Heat Sink", record.Title)
	assert.Equal(t, "Dissipates heat through stacked fins.", record.Description)
	assert.Equal(t, "Fin stacking pattern.", record.KeyDifferences)
}

func TestHeuristicSegmenterAlternateHeadings(t *testing.T) {
	s := NewHeuristicSegmenter()

	text := "Invention Title:\nModular Pump\n\nBackground:\nPumps clog.\n\nAdvantages:\nSelf-cleaning.\n\nAuthors:\nAda Lovelace\n"
	record, err := s.Segment(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "Modular Pump", record.Title)
	assert.Equal(t, "Pumps clog.", record.Description)
	assert.Equal(t, "Self-cleaning.", record.KeyDifferences)
	require.Len(t, record.Inventors, 1)
	assert.Equal(t, "Ada Lovelace", record.Inventors[0].Name)
	assert.Empty(t, record.Inventors[0].Email)
}

func TestHeuristicSegmenterDeterministic(t *testing.T) {
	s := NewHeuristicSegmenter()

	first, err := s.Segment(context.Background(), sampleDocument)
	require.NoError(t, err)
	second, err := s.Segment(context.Background(), sampleDocument)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseInventorLines(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		want  string
		email string
	}{
		{"angle brackets", "Jane Doe <jane@example.com>", "Jane Doe", "jane@example.com"},
		{"parentheses", "Bob Smith (bob@example.com)", "Bob Smith", "bob@example.com"},
		{"dash separator", "Carol White - carol@example.com", "Carol White", "carol@example.com"},
		{"comma separator", "Dan Brown, dan@example.com", "Dan Brown", "dan@example.com"},
		{"bare name", "Erin Green", "Erin Green", ""},
		{"numbered entry", "1. Frank Black <frank@example.com>", "Frank Black", "frank@example.com"},
		{"bulleted entry", "• Grace Hopper", "Grace Hopper", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inventors := parseInventorLines([]string{tt.line})
			require.Len(t, inventors, 1)
			assert.Equal(t, tt.want, inventors[0].Name)
			assert.Equal(t, tt.email, inventors[0].Email)
		})
	}
}

func TestParseInventorLinesSkipsUnusable(t *testing.T) {
	inventors := parseInventorLines([]string{"", "   ", "- ", "<noname@example.com>"})
	assert.Empty(t, inventors)
}
