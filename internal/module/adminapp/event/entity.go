package event

import "time"

const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
	StatusEnded     = "ENDED"
)

type Event struct {
	ID          int64
	Name        string
	Venue       string
	Description *string
	DateFrom    time.Time
	DateTo      *time.Time
	Status      string
	CompanyID   int64
	CreatedBy   int64
	Tables      []Table
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Table is a named seating table within an event; table names are unique per
// event.
type Table struct {
	ID      int64
	Name    string
	EventID int64
}
