package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// --- Reverse engineering ---

func EmptyInput() *Error {
	return New(CodeEmptyInput, http.StatusBadRequest, "SQL input is empty")
}

func ReverseFailed(cause error) *Error {
	return Wrap(CodeReverseFailed, http.StatusUnprocessableEntity, "Failed to reverse engineer input", cause)
}

// --- Pattern library ---

func LibraryDisabled() *Error {
	return New(CodeLibraryDisabled, http.StatusServiceUnavailable, "Pattern library is not configured")
}

func QueryRequired() *Error {
	return New(CodeQueryRequired, http.StatusBadRequest, "Query parameter 'q' is required")
}

func SearchFailed(cause error) *Error {
	return Wrap(CodeSearchFailed, http.StatusInternalServerError, "Pattern search failed", cause)
}

func PairListFailed(cause error) *Error {
	return Wrap(CodePairListFailed, http.StatusInternalServerError, "Failed to list pairs", cause)
}

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}
