package errors

import (
	"net/http"

	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

// ApplicationError carries the HTTP status code and machine-readable status
// alongside the message, so handlers can destructure any error coming out of
// a use case into a response envelope. Data holds optional diagnostic payload
// (e.g. the prior scan's actor and timestamp on a scan conflict).
type ApplicationError struct {
	HTTPStatusCode int
	Status         string
	Message        string
	Data           interface{}
}

func (e *ApplicationError) Error() string {
	return e.Message
}

func New(httpStatusCode int, status string, message string) error {
	return &ApplicationError{
		HTTPStatusCode: httpStatusCode,
		Status:         status,
		Message:        message,
	}
}

func NewWithData(httpStatusCode int, status string, message string, data interface{}) error {
	return &ApplicationError{
		HTTPStatusCode: httpStatusCode,
		Status:         status,
		Message:        message,
		Data:           data,
	}
}

// Destruct normalizes any error into an ApplicationError. Errors that did not
// originate from this package come back as internal server errors.
func Destruct(err error) *ApplicationError {
	if ae, ok := err.(*ApplicationError); ok {
		return ae
	}

	return &ApplicationError{
		HTTPStatusCode: http.StatusInternalServerError,
		Status:         status.INTERNAL_SERVER_ERROR,
		Message:        err.Error(),
	}
}
