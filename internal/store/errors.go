package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrStorageUnavailable is returned when the local database cannot be
	// opened or prepared. Callers degrade to online-only behaviour.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrEntryNotFound is returned when a queue entry targeted by id or
	// local id does not exist, or is not in the status the operation
	// requires.
	ErrEntryNotFound = errors.New("queue entry was not found")

	// ErrDuplicateLocalID is returned when an entry with the same local id
	// is already queued.
	ErrDuplicateLocalID = errors.New("queue entry with this local id already exists")

	// ErrRecordNotFound is returned when a cached record does not exist.
	ErrRecordNotFound = errors.New("cached record was not found")

	// ErrMetadataNotFound is returned when a collection was never refreshed.
	ErrMetadataNotFound = errors.New("sync metadata was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a result
	// row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrEncodingPayload is returned when a payload cannot be serialised to
	// or from JSON.
	ErrEncodingPayload = errors.New("failed to encode payload")
)
