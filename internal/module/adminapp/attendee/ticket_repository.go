package attendee

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
	Save(ctx context.Context, t Ticket, tx *sql.Tx) (int64, error)
	FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Ticket, error)
	ExistsByEventIDAndCode(ctx context.Context, eventID int64, code string) (bool, error)
	UpdateSentAt(ctx context.Context, ID int64, sentAt time.Time, tx *sql.Tx) error
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

// Save implements TicketRepository.
func (r *ticketRepository) Save(ctx context.Context, t Ticket, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO ticket
		(
			code, event_id, attendee_id, table_id, price,
			artifact_path, status, created_at, updated_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING id
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving ticket's properties")
	}
	defer stmt.Close()

	var tableID sql.NullInt64
	if t.TableID != nil {
		tableID.Int64 = *t.TableID
		tableID.Valid = true
	}

	var id int64
	err = stmt.QueryRowContext(ctx,
		t.Code, t.EventID, t.AttendeeID, tableID, t.Price,
		t.ArtifactPath, t.Status, t.CreatedAt, t.UpdatedAt,
	).Scan(&id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving ticket's properties")
	}

	return id, nil
}

// FindByID implements TicketRepository.
func (r *ticketRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Ticket, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, code, event_id, attendee_id, table_id, price,
			artifact_path, status, sent_at, scanned_at, scanned_by,
			created_at, updated_at
		FROM ticket
		WHERE id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Ticket{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting ticket's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	var data Ticket
	var tableID sql.NullInt64
	var sentAt, scannedAt sql.NullTime
	var scannedBy sql.NullString

	err = row.Scan(
		&data.ID, &data.Code, &data.EventID, &data.AttendeeID, &tableID, &data.Price,
		&data.ArtifactPath, &data.Status, &sentAt, &scannedAt, &scannedBy,
		&data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Ticket{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("ticket's properties with id '%d' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Ticket{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting ticket's properties")
	}

	if tableID.Valid {
		data.TableID = &tableID.Int64
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

// ExistsByEventIDAndCode implements TicketRepository. It always reads
// committed rows, never a caller's open transaction, so a code reserved by
// an issuance that later rolls back does not block reuse of that value.
func (r *ticketRepository) ExistsByEventIDAndCode(ctx context.Context, eventID int64, code string) (bool, error) {
	query := `
		SELECT 1
		FROM ticket
		WHERE event_id = $1
			AND code = $2
		LIMIT 1
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while checking ticket's code")
	}
	defer stmt.Close()

	var one int
	err = stmt.QueryRowContext(ctx, eventID, code).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while checking ticket's code")
	}

	return true, nil
}

// UpdateSentAt implements TicketRepository. The status guard makes the
// transition conditional in the statement itself; a ticket that has already
// moved past ISSUED, for example scanned at the gate between the caller's
// read and this write, is left untouched.
func (r *ticketRepository) UpdateSentAt(ctx context.Context, ID int64, sentAt time.Time, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE ticket
		SET
			status = $1,
			sent_at = $2,
			updated_at = $3
		WHERE id = $4
			AND status = $5
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating ticket's properties")
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, StatusSent, sentAt, sentAt, ID, StatusIssued); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating ticket's properties")
	}

	return nil
}
