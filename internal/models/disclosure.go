// internal/models/disclosure.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Disclosure is one invention-disclosure record. DocketNumber is assigned
// once at ingestion and never changes; the allocator guarantees it is
// globally unique even across concurrent uploads.
type Disclosure struct {
	BaseModel
	DocketNumber     string           `json:"docket_number" gorm:"size:50;not null;uniqueIndex"`
	Title            string           `json:"title" gorm:"type:text;not null"`
	Description      string           `json:"description" gorm:"type:text"`
	KeyDifferences   string           `json:"key_differences" gorm:"type:text"`
	Status           DisclosureStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewNotes      *string          `json:"review_notes" gorm:"type:text"`
	OriginalFilename *string          `json:"original_filename" gorm:"size:255"`
	PDFObjectKey     *string          `json:"pdf_object_key" gorm:"size:512"`

	// Relationships. Loaded on read-one; list responses leave them empty.
	Inventors     []Inventor           `json:"inventors,omitempty" gorm:"foreignKey:DisclosureID"`
	StatusHistory []StatusHistoryEntry `json:"status_history,omitempty" gorm:"foreignKey:DisclosureID"`
}

// Inventor belongs to exactly one disclosure and is deleted with it.
// Position preserves the roster order the extractor produced.
type Inventor struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	DisclosureID uuid.UUID `json:"disclosure_id" gorm:"type:uuid;not null;index"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        *string   `json:"email" gorm:"size:255"`
	Position     int       `json:"-" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

func (i *Inventor) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// StatusHistoryEntry is one row of the append-only status timeline. Rows are
// only ever inserted, or removed by the cascade when the parent disclosure
// is deleted. Ordered by ChangedAt the sequence reconstructs the full
// timeline, and the newest entry always matches Disclosure.Status.
type StatusHistoryEntry struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;primary_key"`
	DisclosureID uuid.UUID        `json:"disclosure_id" gorm:"type:uuid;not null;index"`
	Status       DisclosureStatus `json:"status" gorm:"type:varchar(20);not null"`
	ChangedAt    time.Time        `json:"changed_at" gorm:"not null;autoCreateTime"`
}

func (e *StatusHistoryEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (StatusHistoryEntry) TableName() string {
	return "status_history"
}
