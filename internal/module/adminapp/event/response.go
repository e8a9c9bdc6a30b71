package event

import "time"

type TableResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	EventID int64  `json:"event_id"`
}

type EventDetailsResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Venue       string          `json:"venue"`
	Description *string         `json:"description"`
	DateFrom    time.Time       `json:"date_from"`
	DateTo      *time.Time      `json:"date_to"`
	Status      string          `json:"status"`
	CompanyID   int64           `json:"company_id"`
	Tables      []TableResponse `json:"tables,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r *EventDetailsResponse) PopulateFromEntity(e Event) {
	r.ID = e.ID
	r.Name = e.Name
	r.Venue = e.Venue
	r.Description = e.Description
	r.DateFrom = e.DateFrom
	r.DateTo = e.DateTo
	r.Status = e.Status
	r.CompanyID = e.CompanyID
	r.CreatedAt = e.CreatedAt
	r.UpdatedAt = e.UpdatedAt

	for _, t := range e.Tables {
		r.Tables = append(r.Tables, TableResponse{
			ID:      t.ID,
			Name:    t.Name,
			EventID: t.EventID,
		})
	}
}

type CreateEventResponse = EventDetailsResponse

type GetManyEventResponse struct {
	Events []EventDetailsResponse `json:"events"`
	Total  int64                  `json:"total"`
}
