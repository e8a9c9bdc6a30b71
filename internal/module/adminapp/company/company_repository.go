package company

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

type CompanyRepository interface {
	FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Company, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type companyRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewCompanyRepository(logger *logrus.Logger, db *sql.DB) CompanyRepository {
	return &companyRepository{
		logger: logger,
		db:     db,
	}
}

// FindByID implements CompanyRepository.
func (r *companyRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Company, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT id, name, logo_path, owner_id, created_at, updated_at
		FROM company
		WHERE id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Company{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting company's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	var data Company
	var logoPath sql.NullString

	err = row.Scan(&data.ID, &data.Name, &logoPath, &data.OwnerID, &data.CreatedAt, &data.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Company{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("company's properties with id '%d' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Company{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting company's properties")
	}

	if logoPath.Valid {
		data.LogoPath = &logoPath.String
	}

	return data, nil
}
