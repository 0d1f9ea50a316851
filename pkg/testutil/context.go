package testutil

import (
	"net/http"
	"time"

	id "vaxledger/pkg/domain"
	"vaxledger/pkg/requestcontext"
)

// WithCaller attaches a caller identity to the request context, simulating
// what the auth middleware does for authenticated requests.
func WithCaller(req *http.Request, caller id.Identity) *http.Request {
	return req.WithContext(requestcontext.WithCallerID(req.Context(), caller))
}

// WithRequestTime pins the request-scoped clock so derived timestamps are
// deterministic in tests.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}

// WithRequestID attaches a request identifier to the context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
