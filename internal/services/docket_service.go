// internal/services/docket_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DocketService hands out docket numbers from the docket_seq database
// sequence. The sequence is the durable atomic counter: concurrent requests
// and multiple server instances can never receive the same value, values
// survive restarts, and a consumed value is never reissued even when the
// disclosure that took it is deleted or its transaction rolls back. Gaps in
// the series are acceptable.
type DocketService struct {
	db *gorm.DB
}

func NewDocketService(db *gorm.DB) *DocketService {
	return &DocketService{db: db}
}

// Next allocates the next docket number. Formatting is presentation only;
// numeric ordering of the underlying counter is preserved (zero-padding
// keeps lexical order aligned up to 9999 and beyond the pad simply widens).
func (s *DocketService) Next(ctx context.Context) (string, error) {
	var value int64
	if err := s.db.WithContext(ctx).Raw("SELECT nextval('docket_seq')").Scan(&value).Error; err != nil {
		return "", fmt.Errorf("failed to allocate docket number: %w", err)
	}
	return FormatDocketNumber(value), nil
}

func FormatDocketNumber(value int64) string {
	return fmt.Sprintf("IDF-%04d", value)
}
