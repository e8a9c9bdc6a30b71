package ticket

import "time"

type TicketScannedEvent struct {
	TicketID  int64     `json:"ticket_id"`
	Code      string    `json:"code"`
	EventID   int64     `json:"event_id"`
	ScannedAt time.Time `json:"scanned_at"`
	ScannedBy string    `json:"scanned_by"`
}
