// internal/services/export_service.go
package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patentops/disclosure-api/internal/models"
)

// ExportService streams a filtered disclosure set as CSV. It rides the same
// List query the listing endpoint uses, so the filter semantics cannot
// drift between the two, and writes rows straight into the caller's writer
// rather than buffering the document.
type ExportService struct {
	db          *gorm.DB
	disclosures *DisclosureService
}

func NewExportService(db *gorm.DB, disclosures *DisclosureService) *ExportService {
	return &ExportService{db: db, disclosures: disclosures}
}

func (s *ExportService) ExportCSV(ctx context.Context, w io.Writer, search string, status *models.DisclosureStatus) error {
	disclosures, err := s.disclosures.List(ctx, search, status)
	if err != nil {
		return err
	}

	inventorsByDisclosure, err := s.loadInventors(ctx, disclosures)
	if err != nil {
		return err
	}

	return WriteCSV(w, disclosures, inventorsByDisclosure)
}

func (s *ExportService) loadInventors(ctx context.Context, disclosures []models.Disclosure) (map[uuid.UUID][]models.Inventor, error) {
	byDisclosure := make(map[uuid.UUID][]models.Inventor, len(disclosures))
	if len(disclosures) == 0 {
		return byDisclosure, nil
	}

	ids := make([]uuid.UUID, 0, len(disclosures))
	for _, d := range disclosures {
		ids = append(ids, d.ID)
	}

	var inventors []models.Inventor
	err := s.db.WithContext(ctx).
		Where("disclosure_id IN ?", ids).
		Order("disclosure_id, position ASC").
		Find(&inventors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load inventors for export: %w", err)
	}

	for _, inv := range inventors {
		byDisclosure[inv.DisclosureID] = append(byDisclosure[inv.DisclosureID], inv)
	}

	return byDisclosure, nil
}

var csvHeader = []string{
	"Docket Number",
	"Title",
	"Description",
	"Key Differences",
	"Status",
	"Review Notes",
	"Original Filename",
	"Inventor Names",
	"Inventor Emails",
	"Created At",
	"Updated At",
}

// WriteCSV writes the header and one row per disclosure in the order given.
// encoding/csv quotes fields containing separators or quote characters per
// RFC 4180, which is the one byte-exact compatibility requirement here.
func WriteCSV(w io.Writer, disclosures []models.Disclosure, inventorsByDisclosure map[uuid.UUID][]models.Inventor) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, d := range disclosures {
		var names, emails []string
		for _, inv := range inventorsByDisclosure[d.ID] {
			names = append(names, inv.Name)
			if inv.Email != nil && *inv.Email != "" {
				emails = append(emails, *inv.Email)
			}
		}

		row := []string{
			d.DocketNumber,
			d.Title,
			d.Description,
			d.KeyDifferences,
			d.Status.String(),
			stringOrEmpty(d.ReviewNotes),
			stringOrEmpty(d.OriginalFilename),
			strings.Join(names, "; "),
			strings.Join(emails, "; "),
			d.CreatedAt.Format(time.RFC3339),
			d.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
