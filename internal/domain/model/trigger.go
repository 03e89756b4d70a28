package model

import (
	"time"

	"github.com/okian/prhealth/internal/domain/types"
)

// SummaryTrigger asks an external process to generate a narrative summary for a report.
type SummaryTrigger struct {
	ID          string // unique id, used for delivery idempotency downstream
	AccountID   string
	RequestedAt time.Time
	Report      types.HealthReport
}

// DedupeKey groups triggers of one account on one UTC day.
func (t SummaryTrigger) DedupeKey() string {
	return t.AccountID + "|" + t.RequestedAt.UTC().Format(time.DateOnly)
}
