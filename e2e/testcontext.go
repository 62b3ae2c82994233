// Package e2e drives black-box scenarios against a running namelease
// server. The suite acts as an ordinary API client: it mints its own
// tokens with the shared signing key and only speaks HTTP.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Account is a caller identity the suite minted for itself.
type Account struct {
	ID    string
	Token string
}

// TestContext holds the HTTP client, the identities minted for the run,
// and the last response. It is shared across scenarios so lease names
// stay unique for the whole run against a persistent server.
type TestContext struct {
	baseURL    string
	signingKey []byte
	client     *http.Client

	runID    string
	names    map[string]string
	accounts map[string]Account

	lastStatus int
	lastJSON   map[string]any
}

// NewTestContext prepares a context for the server at baseURL. The
// admin account ID must be the one the server was seeded with; its
// token is minted locally from the shared signing key.
func NewTestContext(baseURL, signingKey, adminAccountID string) (*TestContext, error) {
	tc := &TestContext{
		baseURL:    strings.TrimRight(baseURL, "/"),
		signingKey: []byte(signingKey),
		client:     &http.Client{Timeout: 15 * time.Second},
		runID:      uuid.NewString()[:8],
		names:      make(map[string]string),
		accounts:   make(map[string]Account),
	}

	if _, err := uuid.Parse(adminAccountID); err != nil {
		return nil, fmt.Errorf("invalid admin account id %q: %w", adminAccountID, err)
	}
	token, err := tc.mintToken(adminAccountID)
	if err != nil {
		return nil, err
	}
	tc.accounts["admin"] = Account{ID: adminAccountID, Token: token}
	return tc, nil
}

// mintToken signs a bearer token the server will accept, the same way
// registrarctl does.
func (tc *TestContext) mintToken(accountID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": accountID,
		"iss":        "namelease",
		"aud":        []string{"namelease-api"},
		"iat":        jwt.NewNumericDate(now),
		"exp":        jwt.NewNumericDate(now.Add(time.Hour)),
		"jti":        uuid.NewString(),
	})
	signed, err := token.SignedString(tc.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to mint token: %w", err)
	}
	return signed, nil
}

// EnsureAccount mints an identity for alias if the run has not seen it
// yet. The alias "admin" is reserved for the seeded admin.
func (tc *TestContext) EnsureAccount(alias string) error {
	if _, ok := tc.accounts[alias]; ok {
		return nil
	}
	accountID := uuid.NewString()
	token, err := tc.mintToken(accountID)
	if err != nil {
		return err
	}
	tc.accounts[alias] = Account{ID: accountID, Token: token}
	return nil
}

// AccountID returns the account ID minted for alias.
func (tc *TestContext) AccountID(alias string) (string, error) {
	account, ok := tc.accounts[alias]
	if !ok {
		return "", fmt.Errorf("unknown account alias %q", alias)
	}
	return account.ID, nil
}

// LeaseName maps a logical feature-file name to a run-unique one, so
// reruns against the same server never collide with old leases.
func (tc *TestContext) LeaseName(logical string) string {
	if mapped, ok := tc.names[logical]; ok {
		return mapped
	}
	mapped := fmt.Sprintf("%s-%s", tc.runID, logical)
	tc.names[logical] = mapped
	return mapped
}

// POSTAs sends a JSON POST authenticated as alias. An empty alias sends
// the request anonymously.
func (tc *TestContext) POSTAs(alias, path string, body any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if alias != "" {
		account, ok := tc.accounts[alias]
		if !ok {
			return fmt.Errorf("unknown account alias %q", alias)
		}
		req.Header.Set("Authorization", "Bearer "+account.Token)
	}
	return tc.send(req)
}

// GET sends an anonymous GET.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.send(req)
}

func (tc *TestContext) send(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	tc.lastStatus = resp.StatusCode
	tc.lastJSON = nil
	if len(data) > 0 {
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err == nil {
			tc.lastJSON = decoded
		}
	}
	return nil
}

// Status reports the last response status code.
func (tc *TestContext) Status() int {
	return tc.lastStatus
}

// Field returns a top-level field of the last JSON response.
func (tc *TestContext) Field(name string) (any, error) {
	if tc.lastJSON == nil {
		return nil, fmt.Errorf("last response had no JSON body")
	}
	value, ok := tc.lastJSON[name]
	if !ok {
		return nil, fmt.Errorf("response has no field %q", name)
	}
	return value, nil
}

// ErrorCode returns the "error" field of the last error envelope.
func (tc *TestContext) ErrorCode() (string, error) {
	value, err := tc.Field("error")
	if err != nil {
		return "", err
	}
	code, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("error field is %T, not a string", value)
	}
	return code, nil
}
