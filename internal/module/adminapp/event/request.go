package event

import (
	"net/http"
	"time"

	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

type CreateEventRequest struct {
	Name        string   `json:"name" validate:"required"`
	Venue       string   `json:"venue" validate:"required"`
	Description string   `json:"description" validate:"-"`
	DateFrom    string   `json:"date_from" validate:"datetime=2006-01-02 15:04:05"`
	DateTo      string   `json:"date_to" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	CompanyID   int64    `json:"company_id" validate:"required"`
	Tables      []string `json:"tables" validate:"omitempty,dive,required"`
}

func (r CreateEventRequest) ToEntityEvent(createdBy int64, now time.Time) (Event, error) {
	dateFrom, err := time.Parse("2006-01-02 15:04:05", r.DateFrom)
	if err != nil {
		return Event{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "invalid date_from")
	}

	e := Event{
		Name:      r.Name,
		Venue:     r.Venue,
		DateFrom:  dateFrom,
		Status:    StatusActive,
		CompanyID: r.CompanyID,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if r.Description != "" {
		desc := r.Description
		e.Description = &desc
	}

	if r.DateTo != "" {
		dateTo, err := time.Parse("2006-01-02 15:04:05", r.DateTo)
		if err != nil {
			return Event{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "invalid date_to")
		}
		if dateTo.Before(dateFrom) {
			return Event{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "date_to must not be before date_from")
		}
		e.DateTo = &dateTo
	}

	tables := make([]Table, len(r.Tables))
	for i, name := range r.Tables {
		tables[i] = Table{Name: name}
	}
	e.Tables = tables

	return e, nil
}

type GetManyEventRequest struct {
	CompanyID int64 `json:"-"`
	Page      int   `json:"-"`
	Size      int   `json:"-"`
}
