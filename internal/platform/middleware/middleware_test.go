package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	jwttoken "namelease/internal/jwt_token"
	id "namelease/pkg/domain"
	"namelease/pkg/requestcontext"
)

// ============================================================================
// Middleware chain tests
// ============================================================================
//
// Justification for unit tests:
// the chain is the trust boundary for every route. These tests pin request
// identity propagation, panic containment, auth rejection shapes and the
// bodyless-request carve-out in content negotiation.

type MiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupSuite() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *MiddlewareSuite) TestRequestID() {
	s.Run("generates an ID when the caller sends none", func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		s.NotEmpty(seen)
		s.Equal(seen, w.Header().Get("X-Request-ID"))
	})

	s.Run("honours a caller-supplied ID", func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-from-caller")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		s.Equal("req-from-caller", seen)
		s.Equal("req-from-caller", w.Header().Get("X-Request-ID"))
	})
}

func (s *MiddlewareSuite) TestRequestTime() {
	before := time.Now()
	var pinned time.Time
	h := RequestTime(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pinned = requestcontext.Now(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	s.False(pinned.IsZero())
	s.False(pinned.Before(before))
}

func (s *MiddlewareSuite) TestRecovery() {
	h := Recovery(s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Contains(w.Body.String(), `"error":"internal"`)
}

func (s *MiddlewareSuite) TestTimeout() {
	var deadline time.Time
	var hasDeadline bool
	h := Timeout(50*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	s.True(hasDeadline)
	s.WithinDuration(time.Now().Add(50*time.Millisecond), deadline, 25*time.Millisecond)
}

func (s *MiddlewareSuite) TestContentTypeJSON() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	s.Run("rejects a non-JSON body", func() {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("years=2"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		ContentTypeJSON(next).ServeHTTP(w, req)

		s.Equal(http.StatusBadRequest, w.Code)
		s.Contains(w.Body.String(), "bad_request")
	})

	s.Run("accepts a JSON body", func() {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"years":2}`)))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		w := httptest.NewRecorder()
		ContentTypeJSON(next).ServeHTTP(w, req)

		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("passes bodyless requests without a header", func() {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		w := httptest.NewRecorder()
		ContentTypeJSON(next).ServeHTTP(w, req)

		s.Equal(http.StatusNoContent, w.Code)
	})
}

func (s *MiddlewareSuite) TestRequireAuth() {
	jwtService := jwttoken.NewJWTService("test-signing-key", "namelease", "namelease-api")
	account := id.NewAccountID()

	authed := func() (http.Handler, *id.AccountID) {
		var caller id.AccountID
		h := RequireAuth(jwtService, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller = requestcontext.CallerID(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))
		return h, &caller
	}

	s.Run("rejects a missing Authorization header", func() {
		h, _ := authed()
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

		s.Equal(http.StatusUnauthorized, w.Code)
		s.Contains(w.Body.String(), "unauthorized")
	})

	s.Run("rejects a malformed token", func() {
		h, _ := authed()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("injects the caller on a valid token", func() {
		token, err := jwtService.GenerateAccessToken(account, time.Hour)
		s.Require().NoError(err)

		h, caller := authed()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		s.Equal(http.StatusNoContent, w.Code)
		s.Equal(account, *caller)
	})
}
