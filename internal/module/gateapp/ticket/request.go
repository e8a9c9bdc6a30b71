package ticket

type ScanTicketRequest struct {
	EventID int64  `json:"event_id" validate:"required"`
	Code    string `json:"code" validate:"required,len=6,alphanum"`
}
