package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
)

// Store error kinds. Classification relies on structured Postgres error codes,
// never on message text.
var (
	ErrNoDocument      = errors.New("no matching document")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrSchemaViolation = errors.New("document violates schema constraints")
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeInvalidTextRepr     = "22P02"
)

// ClassifyError translates driver-level failures into store error kinds.
// A foreign-key violation means a referenced document is absent, so it maps
// to ErrNoDocument.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoDocument
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicateKey, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNoDocument, pgErr.ConstraintName)
		case codeInvalidTextRepr:
			// A key that cannot be parsed into the column type matches nothing.
			return ErrNoDocument
		case codeNotNullViolation, codeCheckViolation:
			return fmt.Errorf("%w: %s", ErrSchemaViolation, pgErr.ConstraintName)
		}
	}

	return err
}
