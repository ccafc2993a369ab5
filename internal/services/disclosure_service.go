// internal/services/disclosure_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/patentops/disclosure-api/internal/database"
	"github.com/patentops/disclosure-api/internal/extraction"
	"github.com/patentops/disclosure-api/internal/models"
)

// DisclosureService owns the persistent disclosure records and carries each
// one through its lifecycle. Every composite write (create with children,
// update with history append, delete with cascade) runs inside one database
// transaction; a crash or concurrent interleaving can never leave a
// disclosure without its initial history entry or a status change without
// its audit row.
type DisclosureService struct {
	db        *gorm.DB
	docket    *DocketService
	extractor *extraction.Extractor
	storage   BlobStore
}

func NewDisclosureService(db *gorm.DB, docket *DocketService, extractor *extraction.Extractor, storage BlobStore) *DisclosureService {
	return &DisclosureService{
		db:        db,
		docket:    docket,
		extractor: extractor,
		storage:   storage,
	}
}

// Ingest runs the full upload pipeline: extract fields from the PDF,
// allocate a docket number, retain the original bytes when the blob store
// allows, and persist the record atomically. A docket collision is retried
// exactly once with a freshly allocated number before the failure surfaces.
func (s *DisclosureService) Ingest(ctx context.Context, filename string, pdfBytes []byte) (*models.Disclosure, error) {
	candidate, err := s.extractor.Extract(ctx, pdfBytes)
	if err != nil {
		return nil, err
	}

	id := uuid.New()

	// Best effort: losing the blob is survivable, losing the record is not.
	var objectKey *string
	key := fmt.Sprintf("disclosures/%s/%s", id, filename)
	if err := s.storage.Put(ctx, key, pdfBytes, "application/pdf"); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to upload PDF to storage")
	} else {
		objectKey = &key
	}

	disclosure, err := s.createWithFreshDocket(ctx, id, candidate, filename, objectKey)
	if errors.Is(err, ErrDocketConflict) {
		logrus.WithError(err).Error("Docket collision on ingest, retrying with fresh docket")
		disclosure, err = s.createWithFreshDocket(ctx, id, candidate, filename, objectKey)
	}
	if err != nil {
		return nil, err
	}

	return disclosure, nil
}

func (s *DisclosureService) createWithFreshDocket(ctx context.Context, id uuid.UUID, candidate extraction.CandidateRecord, filename string, objectKey *string) (*models.Disclosure, error) {
	docket, err := s.docket.Next(ctx)
	if err != nil {
		return nil, err
	}

	var originalFilename *string
	if filename != "" {
		originalFilename = &filename
	}

	return s.Create(ctx, id, candidate, docket, originalFilename, objectKey)
}

// Create persists a disclosure, its inventor roster, and the initial
// pending history entry as one atomic unit. Inventor names are validated
// before anything is written.
func (s *DisclosureService) Create(ctx context.Context, id uuid.UUID, candidate extraction.CandidateRecord, docketNumber string, originalFilename, pdfObjectKey *string) (*models.Disclosure, error) {
	for _, inv := range candidate.Inventors {
		if inv.Name == "" {
			return nil, fmt.Errorf("%w: inventor name must not be empty", ErrValidation)
		}
	}

	disclosure := &models.Disclosure{
		BaseModel:        models.BaseModel{ID: id},
		DocketNumber:     docketNumber,
		Title:            candidate.Title,
		Description:      candidate.Description,
		KeyDifferences:   candidate.KeyDifferences,
		Status:           models.StatusPending,
		OriginalFilename: originalFilename,
		PDFObjectKey:     pdfObjectKey,
	}

	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		// Defensive: the allocator makes collisions impossible in theory,
		// the unique index makes them harmless in practice.
		var count int64
		if err := tx.Model(&models.Disclosure{}).Where("docket_number = ?", docketNumber).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check docket uniqueness: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrDocketConflict, docketNumber)
		}

		if err := tx.Create(disclosure).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrDocketConflict, docketNumber)
			}
			return fmt.Errorf("failed to create disclosure: %w", err)
		}

		for i, inv := range candidate.Inventors {
			inventor := models.Inventor{
				DisclosureID: disclosure.ID,
				Name:         inv.Name,
				Position:     i,
			}
			if inv.Email != "" {
				email := inv.Email
				inventor.Email = &email
			}
			if err := tx.Create(&inventor).Error; err != nil {
				return fmt.Errorf("failed to create inventor: %w", err)
			}
		}

		entry := models.StatusHistoryEntry{
			DisclosureID: disclosure.ID,
			Status:       models.StatusPending,
			ChangedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create initial status history: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, disclosure.ID)
}

// Get returns the full disclosure: inventors in roster order and the status
// history in chronological order.
func (s *DisclosureService) Get(ctx context.Context, id uuid.UUID) (*models.Disclosure, error) {
	var disclosure models.Disclosure

	err := s.db.WithContext(ctx).
		Preload("Inventors", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC")
		}).
		First(&disclosure, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load disclosure: %w", err)
	}

	return &disclosure, nil
}

// List returns disclosures newest first, ties broken by docket number (the
// insertion order). The search term matches case-insensitively as a
// substring of title, description, or docket number; the status filter is
// exact; both combine with AND. Children are omitted for payload economy.
func (s *DisclosureService) List(ctx context.Context, search string, status *models.DisclosureStatus) ([]models.Disclosure, error) {
	query := s.db.WithContext(ctx).Model(&models.Disclosure{})

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(docket_number) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	// The docket tie-break compares length before text: the prefix and
	// zero-pad make same-length dockets ordered lexically, and a docket
	// that outgrew the pad (IDF-10000) is numerically larger than every
	// shorter one.
	var disclosures []models.Disclosure
	err := query.
		Order("created_at DESC, length(docket_number) DESC, docket_number DESC").
		Find(&disclosures).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list disclosures: %w", err)
	}

	return disclosures, nil
}

// Update reconciles the requested changes against the stored record and
// applies only the resulting diff. An empty diff is a no-op and returns the
// record untouched. A status change appends exactly one history entry in
// the same transaction that writes the new status.
func (s *DisclosureService) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*models.Disclosure, error) {
	var current models.Disclosure
	if err := s.db.WithContext(ctx).First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load disclosure: %w", err)
	}

	diff, err := Reconcile(&current, req)
	if err != nil {
		return nil, err
	}

	if diff.Empty() {
		return s.Get(ctx, id)
	}

	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Model(&models.Disclosure{}).Where("id = ?", id).Updates(diff.Columns).Error; err != nil {
			return fmt.Errorf("failed to update disclosure: %w", err)
		}

		if diff.StatusChanged {
			entry := models.StatusHistoryEntry{
				DisclosureID: id,
				Status:       diff.Status,
				ChangedAt:    time.Now().UTC(),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to append status history: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes the disclosure with its inventors and status history as
// one atomic unit, then deletes the retained PDF best-effort. A second
// delete of the same id fails with ErrNotFound.
func (s *DisclosureService) Delete(ctx context.Context, id uuid.UUID) error {
	var current models.Disclosure
	if err := s.db.WithContext(ctx).First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load disclosure: %w", err)
	}

	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		return deleteDisclosureCascade(tx, id)
	})
	if err != nil {
		return err
	}

	if current.PDFObjectKey != nil {
		if err := s.storage.Delete(ctx, *current.PDFObjectKey); err != nil {
			logrus.WithError(err).WithField("key", *current.PDFObjectKey).Warn("Failed to delete PDF from storage")
		}
	}

	return nil
}

// deleteDisclosureCascade removes the history rows, the inventors, and then
// the disclosure itself. RowsAffected on the final delete is the
// authoritative existence check: a concurrent delete may have won since the
// caller last read the row, and exactly one of the two callers gets the
// success.
func deleteDisclosureCascade(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("disclosure_id = ?", id).Delete(&models.StatusHistoryEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete status history: %w", err)
	}
	if err := tx.Where("disclosure_id = ?", id).Delete(&models.Inventor{}).Error; err != nil {
		return fmt.Errorf("failed to delete inventors: %w", err)
	}

	res := tx.Delete(&models.Disclosure{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete disclosure: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DownloadPDF returns the retained original bytes and a filename for the
// Content-Disposition header. Disclosures without an object key report the
// PDF as unavailable rather than erroring.
func (s *DisclosureService) DownloadPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	disclosure, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if disclosure.PDFObjectKey == nil {
		return nil, "", ErrPDFUnavailable
	}

	data, err := s.storage.Get(ctx, *disclosure.PDFObjectKey)
	if err != nil {
		return nil, "", err
	}

	filename := "disclosure.pdf"
	if disclosure.OriginalFilename != nil && *disclosure.OriginalFilename != "" {
		filename = *disclosure.OriginalFilename
	}

	return data, filename, nil
}
