// Package repository implements the matching ports on PostgreSQL.
package repository

import (
	"errors"
	"fmt"

	"realty_crm_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgForeignKeyViolation = "23503"

	errRepoNotConfigured = "matching repository not configured"
)

// Repository reads the CRUD tables and owns the notification tables.
// Every method goes to the primary pool.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ready(op string) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(op)
	}
	return nil
}

// mapError converts driver errors into apperr kinds.
func mapError(op, notFound string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(notFound).WithOp(op)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return apperr.NotFound(fmt.Sprintf("%s (%s)", notFound, pgErr.ConstraintName)).WithOp(op)
	}
	return apperr.Storage(op, err)
}
