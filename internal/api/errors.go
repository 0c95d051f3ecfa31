package api

import (
	"errors"
	"fmt"
)

// StatusError is returned when a service answers with a non-2xx status.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string // first bytes of the response body, for logs
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Path, e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// UserMessage turns a client error into a short sentence for display.
func UserMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == 413:
			return "The file is too large."
		case se.StatusCode == 415:
			return "Unsupported file type. Use a PDF or TXT file."
		case se.StatusCode >= 500:
			return "The service failed to process the request. Please try again."
		default:
			return fmt.Sprintf("The request was rejected (status %d).", se.StatusCode)
		}
	}
	return "Could not reach the service. Check that it is running."
}
