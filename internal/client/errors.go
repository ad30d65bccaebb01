package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBodyBytes caps how much of an error response body is retained
// for display.
const maxErrorBodyBytes = 4096

// StatusError is returned when the API responds with an unexpected HTTP
// status. It retains the status code and response body so the CLI can
// print diagnosis detail.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// newStatusError builds a StatusError from a response, draining at most
// maxErrorBodyBytes of the body.
func newStatusError(method, path string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
