package adapter

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Classification tells the sync engine whether a failed replay may succeed
// if attempted again.
type Classification int

const (
	// Transient failures count against the retry ceiling. This is the
	// default for unrecognised errors.
	Transient Classification = iota

	// Permanent failures move the entry straight to failed.
	Permanent
)

func (c Classification) String() string {
	if c == Permanent {
		return "permanent"
	}
	return "transient"
}

// Classify maps a remote error to a [Classification].
//
// Permanent:
//   - ErrInvalidRequest
//   - 400, 404, 409 or 422 responses carrying a SQLSTATE of class 22 (data
//     exception), 23 (integrity constraint violation) or 42 (syntax error or
//     access rule violation)
//
// Everything else, including network errors, 5xx, 401/403, 429, an expired
// token and SQLSTATE classes 08, 40 and 57, is Transient.
func Classify(err error) Classification {
	if err == nil {
		return Transient
	}
	if errors.Is(err, ErrInvalidRequest) {
		return Permanent
	}

	if !errors.Is(err, ErrBadRequest) &&
		!errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrConflict) &&
		!errors.Is(err, ErrUnprocessableEntity) {
		return Transient
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ClassifyPgError(pgErr)
	}

	return Transient
}

// ClassifyPgError maps a SQLSTATE to a [Classification].
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
func ClassifyPgError(pgErr *pgconn.PgError) Classification {
	switch pgErr.Code {
	// Class 08 connection exceptions
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure:
		return Transient

	// Class 40 transaction rollback
	case pgerrcode.TransactionRollback, // 40000
		pgerrcode.SerializationFailure, // 40001
		pgerrcode.DeadlockDetected:     // 40P01
		return Transient

	// Class 57 operator intervention
	case pgerrcode.CannotConnectNow: // 57P03
		return Transient
	}

	if len(pgErr.Code) != 5 {
		return Transient
	}

	switch pgErr.Code[:2] {
	case pgerrcode.DataException[:2],
		pgerrcode.IntegrityConstraintViolation[:2],
		pgerrcode.SyntaxErrorOrAccessRuleViolation[:2]:
		return Permanent
	}

	return Transient
}
