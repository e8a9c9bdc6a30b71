package notification

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

type SendArtifactRequest struct {
	Recipient   string       `json:"recipient"`
	Channel     string       `json:"channel"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type SendScanConfirmationRequest struct {
	Recipient string `json:"recipient"`
	Channel   string `json:"channel"`
	Body      string `json:"body"`
}

type SendResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}
