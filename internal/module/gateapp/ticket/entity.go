package ticket

import "time"

const (
	StatusIssued  = "ISSUED"
	StatusSent    = "SENT"
	StatusScanned = "SCANNED"
)

// Ticket is the gate-side read model: the ticket row joined with its
// attendee's contact details, resolved by (event, code).
type Ticket struct {
	ID            int64
	Code          string
	EventID       int64
	AttendeeID    int64
	AttendeeName  string
	AttendeeEmail string
	AttendeePhone string
	Price         int64
	Status        string
	SentAt        *time.Time
	ScannedAt     *time.Time
	ScannedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
