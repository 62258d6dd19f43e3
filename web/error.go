package web

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Error holds the info about a web error
type Error struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string {
	return e.Title + ":" + e.Detail
}

// WriteError writes an error to the reply
func WriteError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	json.NewEncoder(w).Encode(err)
}

var (
	// ErrBadRequest is a generic bad request
	ErrBadRequest = &Error{"bad_request", 400, "Bad request", "Request body is not well-formed. It must be JSON."}
	// ErrAuth if not authenticated
	ErrAuth = &Error{"unauthorized", 401, "Unauthorized", "The request requires authorization"}
	// ErrPermission if the user lacks the needed rights
	ErrPermission = &Error{"forbidden", 403, "Forbidden", "The request requires the right permissions"}
	// ErrCredentials if there are missing / wrong credentials
	ErrCredentials = &Error{"invalid_credentials", 401, "Invalid credentials", "Invalid username or password"}
	// ErrNotFound if the addressed resource does not exist
	ErrNotFound = &Error{"not_found", 404, "Not Found", "The requested resource does not exist"}
	// ErrLoginTaken if the requested login is already registered
	ErrLoginTaken = &Error{"login_taken", 409, "Conflict", "This login is already taken"}
	// ErrEmailTaken if the requested email is already registered
	ErrEmailTaken = &Error{"email_taken", 409, "Conflict", "This email is already registered"}
	// ErrProtectedUser if trying to delete an administrator
	ErrProtectedUser = &Error{"protected_user", 403, "Forbidden", "Administrator accounts cannot be deleted"}
	// ErrPartialDelete if a cascade deletion finished with failed steps
	ErrPartialDelete = &Error{"completed_with_errors", 500, "Internal Server Error", "Deletion finished but some cleanup steps failed"}
	// ErrNotAcceptable wrong accept header
	ErrNotAcceptable = &Error{"not_acceptable", 406, "Not Acceptable", "Accept header must be set to 'application/json'."}
	// ErrUnsupportedMediaType wrong media type
	ErrUnsupportedMediaType = &Error{"unsupported_media_type", 415, "Unsupported Media Type", "Content-Type header must be set to: 'application/json'."}
	// ErrCSRF missing CSRF cookie or parameter
	ErrCSRF = &Error{"forbidden", 403, "Forbidden", "Issue with CSRF code"}
	// ErrInternalServer if things go wrong on our side
	ErrInternalServer = &Error{"internal_server_error", 500, "Internal Server Error", "Something went wrong."}
)

// validationError carries the user correctable message back to the client
func validationError(err error) *Error {
	return &Error{"validation_failed", 400, "Invalid input", err.Error()}
}

// cooldownError tells the user how long to wait before the next publish
func cooldownError(remaining time.Duration) *Error {
	secs := int(math.Ceil(remaining.Seconds()))
	return &Error{"too_many_requests", 429, "Too Many Requests",
		fmt.Sprintf("Please wait %d more seconds before publishing again", secs)}
}
