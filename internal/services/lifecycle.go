// internal/services/lifecycle.go
package services

import (
	"fmt"

	"github.com/patentops/disclosure-api/internal/models"
)

// UpdateRequest carries a sparse edit: nil means "leave the field alone".
// Every optional field is an explicit pointer; nothing here depends on which
// JSON keys happened to be present.
type UpdateRequest struct {
	Title          *string `json:"title" validate:"omitempty,max=1000"`
	Description    *string `json:"description"`
	KeyDifferences *string `json:"key_differences"`
	Status         *string `json:"status" validate:"omitempty,disclosure_status"`
	ReviewNotes    *string `json:"review_notes"`
}

// FieldDiff holds only the fields whose requested value differs from what is
// stored. StatusChanged gates the history append: exactly one entry per
// actual status change, never one for a same-value write.
type FieldDiff struct {
	Columns       map[string]interface{}
	Status        models.DisclosureStatus
	StatusChanged bool
}

func (d FieldDiff) Empty() bool {
	return len(d.Columns) == 0
}

// Reconcile compares the requested changes against the stored record and
// returns the minimal diff. An empty diff is a valid no-op: the caller may
// leave edit mode without persisting anything and without a spurious audit
// entry. Invalid status values are rejected here, before any write.
//
// All status transitions are legal, including backward ones; see
// models.DisclosureStatus.
func Reconcile(current *models.Disclosure, req *UpdateRequest) (FieldDiff, error) {
	diff := FieldDiff{Columns: map[string]interface{}{}}

	if req.Title != nil && *req.Title != current.Title {
		diff.Columns["title"] = *req.Title
	}
	if req.Description != nil && *req.Description != current.Description {
		diff.Columns["description"] = *req.Description
	}
	if req.KeyDifferences != nil && *req.KeyDifferences != current.KeyDifferences {
		diff.Columns["key_differences"] = *req.KeyDifferences
	}

	if req.Status != nil {
		status, err := models.ParseStatus(*req.Status)
		if err != nil {
			return FieldDiff{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if status != current.Status {
			diff.Columns["status"] = status
			diff.Status = status
			diff.StatusChanged = true
		}
	}

	if req.ReviewNotes != nil {
		// Stored nil review notes compare as empty: clearing an already
		// empty note is not a change.
		currentNotes := ""
		if current.ReviewNotes != nil {
			currentNotes = *current.ReviewNotes
		}
		if *req.ReviewNotes != currentNotes {
			diff.Columns["review_notes"] = *req.ReviewNotes
		}
	}

	return diff, nil
}
