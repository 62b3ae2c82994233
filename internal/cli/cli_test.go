package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	jwttoken "namelease/internal/jwt_token"
	id "namelease/pkg/domain"
)

// ============================================================================
// CLI Test Suite
// ============================================================================
// Justification for unit tests: registrarctl is the only human-facing
// surface. Tests pin the request each command sends (method, path, body,
// bearer header), how the server's error envelope surfaces to the user,
// and that locally minted tokens validate against the same claims the
// server checks.

type CLISuite struct {
	suite.Suite
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

// Flag variables persist across Execute calls. Reset the ones whose
// zero state a test relies on.
func (s *CLISuite) SetupTest() {
	tokenAccount = ""
	tokenTTL = 24 * time.Hour
}

// recorded captures the one request a fake server saw.
type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

// fakeServer responds to every route with status and reply, recording
// the last request for assertions.
func (s *CLISuite) fakeServer(status int, reply string) (*httptest.Server, *recorded) {
	rec := &recorded{}
	r := chi.NewRouter()
	r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
		rec.method = req.Method
		rec.path = req.URL.Path
		rec.auth = req.Header.Get("Authorization")
		rec.body = nil
		if data, err := io.ReadAll(req.Body); err == nil && len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		if reply == "" {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	})
	ts := httptest.NewServer(r)
	s.T().Cleanup(ts.Close)
	return ts, rec
}

// run executes the root command with args, returning captured stdout.
func (s *CLISuite) run(args ...string) (string, error) {
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func (s *CLISuite) TestClaim() {
	ts, rec := s.fakeServer(http.StatusOK,
		`{"name":"example.com","owner":"b6f8f3a0-0000-0000-0000-000000000001","duration_years":2}`)

	out, err := s.run("claim", "example.com", "--years", "2", "--amount", "200",
		"--server", ts.URL, "--token", "tok-123")
	s.Require().NoError(err)

	s.Equal(http.MethodPost, rec.method)
	s.Equal("/domains/example.com/claim", rec.path)
	s.Equal("Bearer tok-123", rec.auth)
	s.Equal(float64(2), rec.body["years"])
	s.Equal(float64(200), rec.body["amount"])
	s.Contains(out, `"name": "example.com"`)
}

func (s *CLISuite) TestRenewSurfacesErrorEnvelope() {
	ts, _ := s.fakeServer(http.StatusPaymentRequired,
		`{"error":"insufficient_payment","error_description":"renewal requires at least 400"}`)

	_, err := s.run("renew", "example.com", "--years", "1", "--amount", "10",
		"--server", ts.URL, "--token", "tok-123")
	s.Require().Error(err)
	s.Contains(err.Error(), "insufficient_payment")
	s.Contains(err.Error(), "renewal requires at least 400")
}

func (s *CLISuite) TestInfoAndOwnerAreAnonymousGets() {
	ts, rec := s.fakeServer(http.StatusOK, `{"name":"example.com"}`)

	_, err := s.run("info", "example.com", "--server", ts.URL, "--token", "")
	s.Require().NoError(err)
	s.Equal(http.MethodGet, rec.method)
	s.Equal("/domains/example.com", rec.path)
	s.Empty(rec.auth)

	_, err = s.run("owner", "example.com", "--server", ts.URL, "--token", "")
	s.Require().NoError(err)
	s.Equal("/domains/example.com/owner", rec.path)
}

func (s *CLISuite) TestDeposit() {
	ts, rec := s.fakeServer(http.StatusNoContent, "")

	out, err := s.run("deposit", "500", "--server", ts.URL, "--token", "tok-123")
	s.Require().NoError(err)
	s.Equal("/deposit", rec.path)
	s.Equal(float64(500), rec.body["amount"])
	s.Contains(out, "deposit accepted")

	_, err = s.run("deposit", "lots", "--server", ts.URL, "--token", "tok-123")
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid amount")
}

func (s *CLISuite) TestAdminCommands() {
	ts, rec := s.fakeServer(http.StatusOK, `{"price_per_year":150,"paused":false}`)

	_, err := s.run("admin", "price", "150", "--server", ts.URL, "--token", "tok-123")
	s.Require().NoError(err)
	s.Equal("/admin/price", rec.path)
	s.Equal(float64(150), rec.body["price_per_year"])

	_, err = s.run("admin", "multiplier", "3", "--server", ts.URL, "--token", "tok-123")
	s.Require().NoError(err)
	s.Equal("/admin/multiplier", rec.path)
	s.Equal(float64(3), rec.body["renewal_multiplier"])

	_, err = s.run("admin", "pause", "--server", ts.URL, "--token", "tok-123")
	s.Require().NoError(err)
	s.Equal("/admin/pause", rec.path)
	s.Nil(rec.body)

	_, err = s.run("admin", "withdraw", "--server", ts.URL, "--token", "tok-123")
	s.Require().NoError(err)
	s.Equal("/admin/withdraw", rec.path)

	_, err = s.run("admin", "snapshot", "--server", ts.URL, "--token", "tok-123")
	s.Require().NoError(err)
	s.Equal("/admin/snapshot", rec.path)

	_, err = s.run("admin", "price", "cheap", "--server", ts.URL, "--token", "tok-123")
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid price")
}

func (s *CLISuite) TestTokenMintsValidToken() {
	out, err := s.run("token", "--signing-key", "test-signing-key")
	s.Require().NoError(err)

	var minted struct {
		AccountID string `json:"account_id"`
		Token     string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal([]byte(out), &minted))
	s.NotEmpty(minted.Token)

	svc := jwttoken.NewJWTService("test-signing-key", jwttoken.Issuer, jwttoken.Audience)
	accountID, err := svc.ExtractAccountID(minted.Token)
	s.Require().NoError(err)
	s.Equal(minted.AccountID, accountID.String())
}

func (s *CLISuite) TestTokenForExistingAccount() {
	existing := id.NewAccountID()

	out, err := s.run("token", "--signing-key", "test-signing-key", "--account", existing.String())
	s.Require().NoError(err)

	var minted struct {
		AccountID string `json:"account_id"`
		Token     string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal([]byte(out), &minted))
	s.Equal(existing.String(), minted.AccountID)

	_, err = s.run("token", "--account", "not-a-uuid")
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid --account")
}
