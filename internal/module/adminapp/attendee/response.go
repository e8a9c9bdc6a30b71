package attendee

import "time"

type AttendeeResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	EventID int64  `json:"event_id"`
}

type TicketDetailsResponse struct {
	ID          int64            `json:"id"`
	Code        string           `json:"code"`
	EventID     int64            `json:"event_id"`
	TableID     *int64           `json:"table_id"`
	Price       int64            `json:"price"`
	Status      string           `json:"status"`
	ArtifactURL string           `json:"artifact_url"`
	SentAt      *time.Time       `json:"sent_at"`
	ScannedAt   *time.Time       `json:"scanned_at"`
	ScannedBy   *string          `json:"scanned_by"`
	Attendee    AttendeeResponse `json:"attendee"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (r *TicketDetailsResponse) PopulateFromEntity(a Attendee, t Ticket, artifactURL string) {
	r.ID = t.ID
	r.Code = t.Code
	r.EventID = t.EventID
	r.TableID = t.TableID
	r.Price = t.Price
	r.Status = t.Status
	r.ArtifactURL = artifactURL
	r.SentAt = t.SentAt
	r.ScannedAt = t.ScannedAt
	r.ScannedBy = t.ScannedBy
	r.Attendee = AttendeeResponse{
		ID:      a.ID,
		Name:    a.Name,
		Email:   a.Email,
		Phone:   a.Phone,
		EventID: a.EventID,
	}
	r.CreatedAt = t.CreatedAt
	r.UpdatedAt = t.UpdatedAt
}

type IssueTicketResponse = TicketDetailsResponse
