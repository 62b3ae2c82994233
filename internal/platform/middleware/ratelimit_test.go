package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RateLimitSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupSuite() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingLimited struct {
	rejected int
}

func (c *countingLimited) IncrementRateLimited() {
	c.rejected++
}

func (s *RateLimitSuite) TestRejectsBeyondBurst() {
	store := NewLimiterStore(1, 2)
	counted := &countingLimited{}
	h := RateLimit(store, counted, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/domains/example", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	s.Equal([]int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	s.Equal(1, counted.rejected)
}

func (s *RateLimitSuite) TestBucketsAreIndependentPerClient() {
	store := NewLimiterStore(1, 1)
	h := RateLimit(store, nil, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:4000"
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:4000"

	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, first)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, second)

	s.Equal(http.StatusNoContent, w1.Code)
	s.Equal(http.StatusNoContent, w2.Code)
}

func (s *RateLimitSuite) TestCleanupEvictsIdleBuckets() {
	store := NewLimiterStore(1, 1)
	store.idleTTL = 10 * time.Millisecond

	store.Get("10.0.0.1")
	s.Len(store.entries, 1)

	time.Sleep(20 * time.Millisecond)
	store.Cleanup()

	s.Empty(store.entries)
}
