package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Reverse-engineering errors.
const (
	CodeEmptyInput    Code = "EMPTY_INPUT"
	CodeReverseFailed Code = "REVERSE_FAILED"
)

// Pattern library errors.
const (
	CodeLibraryDisabled  Code = "LIBRARY_DISABLED"
	CodeQueryRequired    Code = "QUERY_REQUIRED"
	CodeSearchFailed     Code = "SEARCH_FAILED"
	CodePairListFailed   Code = "PAIR_LIST_FAILED"
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
)
