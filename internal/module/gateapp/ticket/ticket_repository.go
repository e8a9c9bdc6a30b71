package ticket

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

type TicketRepository interface {
	FindByEventIDAndCode(ctx context.Context, eventID int64, code string) (Ticket, error)
	// Scan sets the scanned fields only when they are still unset. It
	// reports whether this caller won the transition.
	Scan(ctx context.Context, eventID int64, code string, scannedAt time.Time, scannedBy string) (bool, error)
}

type ticketRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewTicketRepository(logger *logrus.Logger, db *sql.DB) TicketRepository {
	return &ticketRepository{
		logger: logger,
		db:     db,
	}
}

// FindByEventIDAndCode implements TicketRepository.
func (r *ticketRepository) FindByEventIDAndCode(ctx context.Context, eventID int64, code string) (Ticket, error) {
	query := `
		SELECT
			t.id, t.code, t.event_id, t.attendee_id,
			a.name, a.email, a.phone,
			t.price, t.status, t.sent_at, t.scanned_at, t.scanned_by,
			t.created_at, t.updated_at
		FROM ticket t
		JOIN attendee a
			ON a.id = t.attendee_id
		WHERE t.event_id = $1
			AND t.code = $2
		LIMIT 1
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Ticket{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting ticket's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, eventID, code)

	var data Ticket
	var sentAt, scannedAt sql.NullTime
	var scannedBy sql.NullString

	err = row.Scan(
		&data.ID, &data.Code, &data.EventID, &data.AttendeeID,
		&data.AttendeeName, &data.AttendeeEmail, &data.AttendeePhone,
		&data.Price, &data.Status, &sentAt, &scannedAt, &scannedBy,
		&data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Ticket{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("ticket with code '%s' is not found for this event", code))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Ticket{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting ticket's properties")
	}

	if sentAt.Valid {
		data.SentAt = &sentAt.Time
	}
	if scannedAt.Valid {
		data.ScannedAt = &scannedAt.Time
	}
	if scannedBy.Valid {
		data.ScannedBy = &scannedBy.String
	}

	return data, nil
}

// Scan implements TicketRepository. The guard on scanned_at makes the
// read-modify-write a single conditional update, so two racing callers can
// never both observe an affected row.
func (r *ticketRepository) Scan(ctx context.Context, eventID int64, code string, scannedAt time.Time, scannedBy string) (bool, error) {
	query := `
		UPDATE ticket
		SET
			status = $1,
			scanned_at = $2,
			scanned_by = $3,
			updated_at = $4
		WHERE event_id = $5
			AND code = $6
			AND scanned_at IS NULL
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while scanning ticket")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, StatusScanned, scannedAt, scannedBy, scannedAt, eventID, code)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while scanning ticket")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while scanning ticket")
	}

	return affected == 1, nil
}
