package attendee

import (
	"fmt"
	"time"
)

// Ticket status is a closed set. Transitions only move forward:
// ISSUED -> SENT -> SCANNED.
const (
	StatusIssued  = "ISSUED"
	StatusSent    = "SENT"
	StatusScanned = "SCANNED"
)

type Attendee struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	EventID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Ticket struct {
	ID           int64
	Code         string
	EventID      int64
	AttendeeID   int64
	TableID      *int64
	Price        int64
	ArtifactPath string
	Status       string
	SentAt       *time.Time
	ScannedAt    *time.Time
	ScannedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MarkSent records delivery scheduling. Only an issued ticket may be sent.
func (t *Ticket) MarkSent(at time.Time) error {
	if t.Status != StatusIssued {
		return fmt.Errorf("ticket %s cannot transition from %s to %s", t.Code, t.Status, StatusSent)
	}

	t.Status = StatusSent
	t.SentAt = &at
	t.UpdatedAt = at

	return nil
}

// MarkScanned records redemption. A scanned ticket never transitions again.
func (t *Ticket) MarkScanned(at time.Time, by string) error {
	if t.Status == StatusScanned {
		return fmt.Errorf("ticket %s has already been scanned", t.Code)
	}

	t.Status = StatusScanned
	t.ScannedAt = &at
	t.ScannedBy = &by
	t.UpdatedAt = at

	return nil
}
