package feedapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
)

type ErrorKind int

const (
	// KindTransient is a failure without a response: connectivity, DNS, reset.
	KindTransient ErrorKind = iota
	// KindRejected is a validation or conflict answer from the server.
	KindRejected
	KindUnauthorized
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRejected:
		return "rejected"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// APIError is a failed gateway call. Status is zero when no response arrived.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Kind() ErrorKind {
	switch {
	case e.Status == 0:
		return KindTransient
	case e.Status == http.StatusUnauthorized:
		return KindUnauthorized
	case e.Status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindRejected
	}
}

// IsRecoverable reports whether the user can keep working after err. Only a
// lost session is fatal.
func IsRecoverable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind() != KindUnauthorized
	}
	return true
}

// KindOf classifies any error; errors not produced by the gateway count as
// transient.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	return KindTransient
}

type errorEnvelope struct {
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIError(status int, body any, raw string) *APIError {
	msg := ""
	if env, ok := body.(*errorEnvelope); ok && env != nil {
		switch {
		case env.Error != nil && env.Error.Message != "":
			msg = env.Error.Message
		case env.Message != "":
			msg = env.Message
		}
	}
	if raw = strings.TrimSpace(raw); msg == "" && !strings.HasPrefix(raw, "{") {
		msg = raw
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}
