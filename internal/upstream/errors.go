package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is returned when the backend answers with a shape
// the contract does not define. The gateway does not probe alternatives.
var ErrMalformedResponse = errors.New("malformed backend response")

// Error is a backend-reported failure: the HTTP status plus the message
// the backend attributed to it. Transport failures are plain wrapped
// errors, not *Error.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// AsError unwraps err into a backend *Error if it is one.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsUnauthenticated reports whether err is a 401-class backend response.
// Callers treat it as a terminal redirect back to login.
func IsUnauthenticated(err error) bool {
	be, ok := AsError(err)
	return ok && be.Status == http.StatusUnauthorized
}

// IsRejection reports whether err is a backend-reported validation failure
// or conflict (4xx), e.g. a session that filled up in a race.
func IsRejection(err error) bool {
	be, ok := AsError(err)
	return ok && be.Status >= 400 && be.Status < 500 && be.Status != http.StatusUnauthorized
}
