package attendee

type IssueTicketRequest struct {
	EventID int64  `json:"event_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"email"`
	Phone   string `json:"phone" validate:"required"`
	Price   int64  `json:"price" validate:"required,min=0"`
	TableID *int64 `json:"table_id" validate:"-"`
}

type SendTicketRequest struct {
	TicketID int64 `json:"ticket_id" validate:"required"`
}
