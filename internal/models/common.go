// internal/models/common.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. No soft-delete column: disclosures are
// removed with an explicit cascading delete, never tombstoned.
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IDs are generated application-side so identity does not depend on any
// database extension or dialect.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// DisclosureStatus is the review state of a disclosure.
//
// The transition graph is intentionally total: any status may move to any
// other status, including backward (e.g. approved back to pending), and no
// status is terminal. Review workflows are non-linear in practice; a
// reviewer may reopen a rejected disclosure at any time. Restricting
// backward transitions is an open product decision, not an omission here.
type DisclosureStatus string

const (
	StatusPending  DisclosureStatus = "pending"
	StatusReviewed DisclosureStatus = "reviewed"
	StatusApproved DisclosureStatus = "approved"
	StatusRejected DisclosureStatus = "rejected"
)

func (s DisclosureStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s DisclosureStatus) String() string {
	return string(s)
}

// ParseStatus validates a raw status value from an update payload or query
// string.
func ParseStatus(raw string) (DisclosureStatus, error) {
	s := DisclosureStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid status value %q", raw)
	}
	return s, nil
}
