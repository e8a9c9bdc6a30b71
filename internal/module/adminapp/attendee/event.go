package attendee

import "time"

type TicketIssuedEvent struct {
	TicketID     int64     `json:"ticket_id"`
	Code         string    `json:"code"`
	EventID      int64     `json:"event_id"`
	AttendeeID   int64     `json:"attendee_id"`
	ArtifactPath string    `json:"artifact_path"`
	IssuedAt     time.Time `json:"issued_at"`
}
