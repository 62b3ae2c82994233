package testutil

import (
	"net/http"
	"time"

	id "namelease/pkg/domain"
	"namelease/pkg/requestcontext"
)

// WithCaller stamps a verified caller account onto the request context.
// This simulates what the auth middleware does for authenticated
// requests. An unparseable ID leaves the request anonymous.
func WithCaller(req *http.Request, accountID string) *http.Request {
	parsed, err := id.ParseAccountID(accountID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCallerID(req.Context(), parsed))
}

// WithRequestTime pins the request clock. This simulates the
// request-time middleware with a controlled instant instead of
// time.Now.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}

// WithRequestID stamps a request ID onto the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
