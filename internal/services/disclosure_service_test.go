// internal/services/disclosure_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/patentops/disclosure-api/internal/database"
	"github.com/patentops/disclosure-api/internal/extraction"
	"github.com/patentops/disclosure-api/internal/models"
)

type noopBlobStore struct{}

func (noopBlobStore) Put(context.Context, string, []byte, string) error { return ErrStorageUnavailable }
func (noopBlobStore) Get(context.Context, string) ([]byte, error) {
	return nil, ErrStorageUnavailable
}
func (noopBlobStore) Delete(context.Context, string) error { return nil }

func newStoreService(t *testing.T) *DisclosureService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One in-memory database per test; a second pooled connection would see
	// an empty schema.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Disclosure{},
		&models.Inventor{},
		&models.StatusHistoryEntry{},
	))

	return NewDisclosureService(db, nil, nil, noopBlobStore{})
}

func seedDisclosure(t *testing.T, svc *DisclosureService, docket, title string) *models.Disclosure {
	t.Helper()

	candidate := extraction.CandidateRecord{
		Title:          title,
		Description:    "A mechanism for " + title + ".",
		KeyDifferences: "Smaller and lighter.",
		Inventors: []extraction.CandidateInventor{
			{Name: "Ada Lovelace", Email: "ada@example.com"},
			{Name: "Charles Babbage"},
		},
	}

	disclosure, err := svc.Create(context.Background(), uuid.New(), candidate, docket, nil, nil)
	require.NoError(t, err)
	return disclosure
}

func TestCreateWritesChildrenAtomically(t *testing.T) {
	svc := newStoreService(t)

	disclosure := seedDisclosure(t, svc, "IDF-0001", "Widget coupling")

	assert.Equal(t, "IDF-0001", disclosure.DocketNumber)
	assert.Equal(t, models.StatusPending, disclosure.Status)

	require.Len(t, disclosure.Inventors, 2)
	assert.Equal(t, "Ada Lovelace", disclosure.Inventors[0].Name)
	assert.Equal(t, 0, disclosure.Inventors[0].Position)
	assert.Equal(t, "Charles Babbage", disclosure.Inventors[1].Name)
	assert.Equal(t, 1, disclosure.Inventors[1].Position)
	assert.Nil(t, disclosure.Inventors[1].Email)

	require.Len(t, disclosure.StatusHistory, 1)
	assert.Equal(t, models.StatusPending, disclosure.StatusHistory[0].Status)
	assert.Equal(t, disclosure.Status, disclosure.StatusHistory[0].Status)
}

func TestCreateRejectsEmptyInventorNameBeforeWriting(t *testing.T) {
	svc := newStoreService(t)

	candidate := extraction.CandidateRecord{
		Title:     "Nameless",
		Inventors: []extraction.CandidateInventor{{Name: ""}},
	}
	_, err := svc.Create(context.Background(), uuid.New(), candidate, "IDF-0001", nil, nil)
	require.ErrorIs(t, err, ErrValidation)

	var count int64
	require.NoError(t, svc.db.Model(&models.Disclosure{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRejectsDuplicateDocket(t *testing.T) {
	svc := newStoreService(t)

	seedDisclosure(t, svc, "IDF-0001", "First")

	candidate := extraction.CandidateRecord{Title: "Second"}
	_, err := svc.Create(context.Background(), uuid.New(), candidate, "IDF-0001", nil, nil)
	require.ErrorIs(t, err, ErrDocketConflict)
}

func TestUpdateStatusAppendsMatchingHistoryEntry(t *testing.T) {
	svc := newStoreService(t)

	created := seedDisclosure(t, svc, "IDF-0001", "Widget coupling")

	updated, err := svc.Update(context.Background(), created.ID, &UpdateRequest{
		Status:      strPtr("approved"),
		ReviewNotes: strPtr("Ship it."),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, updated.Status)
	require.NotNil(t, updated.ReviewNotes)
	assert.Equal(t, "Ship it.", *updated.ReviewNotes)

	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, models.StatusPending, updated.StatusHistory[0].Status)
	assert.Equal(t, models.StatusApproved, updated.StatusHistory[1].Status)
	assert.False(t, updated.StatusHistory[1].ChangedAt.Before(updated.StatusHistory[0].ChangedAt))

	// The stored status always agrees with the newest history entry.
	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	assert.Equal(t, updated.Status, last.Status)
}

func TestUpdateWithSameStatusAppendsNothing(t *testing.T) {
	svc := newStoreService(t)

	created := seedDisclosure(t, svc, "IDF-0001", "Widget coupling")

	updated, err := svc.Update(context.Background(), created.ID, &UpdateRequest{
		Title:  strPtr("Widget coupling"),
		Status: strPtr("pending"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Len(t, updated.StatusHistory, 1)
}

func TestDeleteCascadesAndSecondDeleteFails(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	created := seedDisclosure(t, svc, "IDF-0001", "Widget coupling")
	_, err := svc.Update(ctx, created.ID, &UpdateRequest{Status: strPtr("rejected")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var inventors, history int64
	require.NoError(t, svc.db.Model(&models.Inventor{}).Where("disclosure_id = ?", created.ID).Count(&inventors).Error)
	require.NoError(t, svc.db.Model(&models.StatusHistoryEntry{}).Where("disclosure_id = ?", created.ID).Count(&history).Error)
	assert.Zero(t, inventors)
	assert.Zero(t, history)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

func TestDeleteCascadeFailsWhenRowAlreadyGone(t *testing.T) {
	svc := newStoreService(t)

	// A concurrent delete may remove the row between the existence read and
	// the cascade; the cascade itself must refuse to report success then.
	err := database.WithTransaction(svc.db, func(tx *gorm.DB) error {
		return deleteDisclosureCascade(tx, uuid.New())
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListComposesSearchAndStatusFilters(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	seedDisclosure(t, svc, "IDF-0001", "Widget coupling")
	brake := seedDisclosure(t, svc, "IDF-0002", "Widget brake")
	seedDisclosure(t, svc, "IDF-0003", "Gear assembly")

	_, err := svc.Update(ctx, brake.ID, &UpdateRequest{Status: strPtr("approved")})
	require.NoError(t, err)

	approved := models.StatusApproved

	// Both filters must hold: "widget" alone matches two records, approved
	// alone matches one, together exactly one.
	results, err := svc.List(ctx, "widget", &approved)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "IDF-0002", results[0].DocketNumber)

	// Search is case-insensitive.
	results, err = svc.List(ctx, "WIDGET", nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Search also covers the docket number.
	results, err = svc.List(ctx, "idf-0003", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Gear assembly", results[0].Title)

	// A pending filter excludes the approved record.
	pending := models.StatusPending
	results, err = svc.List(ctx, "", &pending)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestListOrdersDocketTiesNumerically(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	older := seedDisclosure(t, svc, "IDF-0042", "Old gear")
	padded := seedDisclosure(t, svc, "IDF-9999", "Last padded docket")
	wide := seedDisclosure(t, svc, "IDF-10000", "First five-digit docket")

	// Pin the timestamps: the two newest share one instant, so ordering
	// within the tie falls to the docket number.
	tie := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, row := range []struct {
		id uuid.UUID
		at time.Time
	}{
		{older.ID, tie.Add(-time.Hour)},
		{padded.ID, tie},
		{wide.ID, tie},
	} {
		require.NoError(t, svc.db.Model(&models.Disclosure{}).
			Where("id = ?", row.id).
			UpdateColumn("created_at", row.at).Error)
	}

	results, err := svc.List(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// IDF-10000 outranks IDF-9999 despite sorting before it lexically.
	assert.Equal(t, "IDF-10000", results[0].DocketNumber)
	assert.Equal(t, "IDF-9999", results[1].DocketNumber)
	assert.Equal(t, "IDF-0042", results[2].DocketNumber)
}
