package ticket

import "time"

type ScanTicketResponse struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	EventID      int64      `json:"event_id"`
	AttendeeName string     `json:"attendee_name"`
	Status       string     `json:"status"`
	ScannedAt    *time.Time `json:"scanned_at"`
	ScannedBy    *string    `json:"scanned_by"`
}

func (r *ScanTicketResponse) PopulateFromEntity(t Ticket) {
	r.ID = t.ID
	r.Code = t.Code
	r.EventID = t.EventID
	r.AttendeeName = t.AttendeeName
	r.Status = t.Status
	r.ScannedAt = t.ScannedAt
	r.ScannedBy = t.ScannedBy
}

// AlreadyScannedData rides in the conflict response so the gate operator can
// see who redeemed the code first, and when.
type AlreadyScannedData struct {
	ScannedAt *time.Time `json:"scanned_at"`
	ScannedBy *string    `json:"scanned_by"`
}
