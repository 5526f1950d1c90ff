package feedapi

import (
	"github.com/google/uuid"
	"resty.dev/v3"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with a fresh id unless one is set.
func RequestIDMiddleware(_ *resty.Client, req *resty.Request) error {
	if req.Header.Get(RequestIDHeader) == "" {
		req.SetHeader(RequestIDHeader, uuid.NewString())
	}
	return nil
}
