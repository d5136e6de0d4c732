package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrOperationNotFound is returned when a pending operation with the
	// requested ID does not exist.
	ErrOperationNotFound = errors.New("operation was not found")

	// ErrMappingNotFound is returned when no real identifier is known for a
	// temporary one.
	ErrMappingNotFound = errors.New("identifier mapping was not found")

	// ErrNoSession is returned by [CredentialStore.Load] when no bearer
	// session has been saved.
	ErrNoSession = errors.New("no session was saved")

	// ErrUnsupportedDSN is returned when the DSN matches none of the known
	// database drivers.
	ErrUnsupportedDSN = errors.New("unsupported database dsn")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingPayload is returned when a payload cannot be converted to or
	// from its stored JSON form.
	ErrEncodingPayload = errors.New("failed to encode payload")
)
