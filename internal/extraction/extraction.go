// internal/extraction/extraction.go

// Package extraction turns raw PDF bytes into a best-effort structured
// candidate record. It performs no persistence: Extract is a pure
// transformation from bytes to CandidateRecord, and the same bytes always
// produce the same record for a given segmenter.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrUnreadableDocument marks malformed or non-PDF input, or a PDF from
	// which no usable text could be obtained. User-correctable.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrExtractionTimeout marks extraction that exceeded its bound.
	// Retryable by resubmission; nothing has been persisted.
	ErrExtractionTimeout = errors.New("extraction timed out")
)

// CandidateInventor is one extracted roster entry.
type CandidateInventor struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CandidateRecord is the extractor's best-effort structured guess prior to
// persistence. Fields the segmenter could not locate are empty, never
// missing: absence of a section is not an extraction failure.
type CandidateRecord struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	KeyDifferences string              `json:"key_differences"`
	Inventors      []CandidateInventor `json:"inventors"`
}

// Segmenter isolates the disclosure fields within already-extracted text.
// The segmentation approach (keyword heuristics vs. a model call) is a
// replaceable strategy; ingestion orchestration never depends on which one
// is wired in.
type Segmenter interface {
	Segment(ctx context.Context, text string) (CandidateRecord, error)
}

// Extractor runs the full bytes-to-record pipeline.
type Extractor struct {
	segmenter    Segmenter
	minTextChars int
}

func NewExtractor(segmenter Segmenter, minTextChars int) *Extractor {
	if minTextChars <= 0 {
		minTextChars = 50
	}
	return &Extractor{segmenter: segmenter, minTextChars: minTextChars}
}

// Extract reads the PDF text, segments it into fields, and normalizes the
// result. It honors the caller's context deadline; on expiry the error is
// ErrExtractionTimeout and no side effects have occurred.
func (e *Extractor) Extract(ctx context.Context, pdfBytes []byte) (CandidateRecord, error) {
	text, err := ReadText(pdfBytes)
	if err != nil {
		return CandidateRecord{}, err
	}

	if len(strings.TrimSpace(text)) < e.minTextChars {
		return CandidateRecord{}, fmt.Errorf("%w: could not extract sufficient text; the file may be image-based or corrupted", ErrUnreadableDocument)
	}

	if err := ctx.Err(); err != nil {
		return CandidateRecord{}, timeoutError(err)
	}

	record, err := e.segmenter.Segment(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return CandidateRecord{}, timeoutError(ctxErr)
		}
		return CandidateRecord{}, err
	}

	return normalizeRecord(record), nil
}

func timeoutError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrExtractionTimeout
	}
	return err
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// normalizeText strips control characters and collapses whitespace while
// keeping paragraph breaks readable.
func normalizeText(s string) string {
	s = controlChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = blankRuns.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func normalizeRecord(r CandidateRecord) CandidateRecord {
	out := CandidateRecord{
		Title:          normalizeText(r.Title),
		Description:    normalizeText(r.Description),
		KeyDifferences: normalizeText(r.KeyDifferences),
		Inventors:      make([]CandidateInventor, 0, len(r.Inventors)),
	}

	for _, inv := range r.Inventors {
		name := normalizeText(inv.Name)
		if name == "" {
			continue
		}
		out.Inventors = append(out.Inventors, CandidateInventor{
			Name:  name,
			Email: strings.TrimSpace(inv.Email),
		})
	}

	return out
}
