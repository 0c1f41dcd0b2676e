package views

import (
	"errors"
	"net/http"
)

// HTTPError lets guards and callbacks choose the response status of a
// failure.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with an HTTP status code.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode reports the HTTP status, defaulting to 500.
func (e *StatusError) StatusCode() int {
	if e.Code == 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var herr HTTPError
	if errors.As(err, &herr) {
		if code := herr.StatusCode(); code > 0 {
			status = code
		}
	}
	http.Error(w, err.Error(), status)
}
