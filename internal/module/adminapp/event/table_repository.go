package event

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

type TableRepository interface {
	Save(ctx context.Context, t Table, tx *sql.Tx) (int64, error)
	FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Table, error)
	FindManyByEventID(ctx context.Context, eventID int64, tx *sql.Tx) ([]Table, error)
}

type tableRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewTableRepository(logger *logrus.Logger, db *sql.DB) TableRepository {
	return &tableRepository{
		logger: logger,
		db:     db,
	}
}

// Save implements TableRepository.
func (r *tableRepository) Save(ctx context.Context, t Table, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO event_table (name, event_id)
		VALUES ($1, $2)
		RETURNING id
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving event table's properties")
	}
	defer stmt.Close()

	var id int64
	err = stmt.QueryRowContext(ctx, t.Name, t.EventID).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return 0, errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("event table '%s' already exists for this event", t.Name))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving event table's properties")
	}

	return id, nil
}

// FindByID implements TableRepository.
func (r *tableRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Table, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT id, name, event_id
		FROM event_table
		WHERE id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Table{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting event table's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	var data Table
	err = row.Scan(&data.ID, &data.Name, &data.EventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return Table{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("event table's properties with id '%d' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Table{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting event table's properties")
	}

	return data, nil
}

// FindManyByEventID implements TableRepository.
func (r *tableRepository) FindManyByEventID(ctx context.Context, eventID int64, tx *sql.Tx) ([]Table, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT id, name, event_id
		FROM event_table
		WHERE event_id = $1
		ORDER BY id ASC
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of event table's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, eventID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of event table's properties")
	}

	defer rows.Close()

	var data = make([]Table, 0)

	for rows.Next() {
		var t Table

		if err := rows.Scan(&t.ID, &t.Name, &t.EventID); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of event table's properties")
		}

		data = append(data, t)
	}

	return data, nil
}
