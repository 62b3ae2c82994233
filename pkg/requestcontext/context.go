// Package requestcontext carries request-scoped values from middleware to
// services without binding either side to net/http.
//
// Middleware writes the authenticated caller, the request ID and the
// request timestamp; services and stores read them back:
//
//	caller := requestcontext.CallerID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject the same values directly:
//
//	ctx = requestcontext.WithCallerID(ctx, caller)
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "namelease/pkg/domain"
)

// Typed keys, so values set here cannot collide with any other package.
type (
	callerIDKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// CallerID returns the authenticated caller account, or id.NilAccount
// when the request is anonymous.
func CallerID(ctx context.Context) id.AccountID {
	if caller, ok := ctx.Value(callerIDKey{}).(id.AccountID); ok {
		return caller
	}
	return id.NilAccount
}

// WithCallerID marks the context as authenticated for caller.
func WithCallerID(ctx context.Context, caller id.AccountID) context.Context {
	return context.WithValue(ctx, callerIDKey{}, caller)
}

// RequestID returns the request ID, or "" when none was assigned.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request-scoped clock, falling back to time.Now for
// contexts that never passed through the HTTP middleware.
//
// Every mutation in a single request observes the same instant: the claim
// timestamp, the expiry check, and the emitted event all read this value.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request clock. Tests use it to place a scenario at a
// chosen instant; workers use it so one batch shares a single timestamp.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
