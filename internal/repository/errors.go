package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by repositories.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateEmail   = errors.New("account with this email already exists")
	ErrDuplicatePairing = errors.New("pairing already exists")
	ErrDuplicateSlug    = errors.New("course with this slug already exists")
	// ErrRoleMismatch is returned when a foreign key into a role profile table fails.
	ErrRoleMismatch = errors.New("referenced account has the wrong role")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// notFound converts pgx.ErrNoRows into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
