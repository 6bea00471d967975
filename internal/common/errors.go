package common

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound reports that a single-entity lookup by id found nothing.
var ErrNotFound = errors.New("not found")

// ReferenceNotFoundError reports a foreign key in a create/update request that
// does not resolve to an existing entity.
type ReferenceNotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.Entity, e.ID)
}

// ConflictError reports a uniqueness constraint that would be violated, or a
// delete that would orphan referencing records.
type ConflictError struct {
	Entity string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict on %s", e.Entity, e.Key)
}

// InsufficientStockError reports a consumption that would drive a resource
// quantity negative. Available is the quantity observed when the deduction was
// rejected.
type InsufficientStockError struct {
	ResourceID uuid.UUID
	Needed     float64
	Available  float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for resource %s: need %g, have %g",
		e.ResourceID, e.Needed, e.Available)
}

// InvalidInputError reports malformed input caught before reaching storage.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Postgres error codes the storage layer surfaces when a constraint race is
// lost between pre-check and write.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// MapStorageError translates constraint violations surfaced at commit time into
// the same typed kinds the validator pre-checks return, so callers never see a
// raw storage error for a lost race. Entity names the record being written.
func MapStorageError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			// On inserts/updates the missing side is the referenced entity; on
			// deletes it is a referencing record blocking the removal.
			return &ConflictError{Entity: entity, Key: pgErr.ConstraintName}
		case pgUniqueViolation:
			return &ConflictError{Entity: entity, Key: pgErr.ConstraintName}
		case pgCheckViolation:
			return &InvalidInputError{Field: pgErr.ConstraintName, Reason: "constraint violated"}
		}
	}
	return err
}
