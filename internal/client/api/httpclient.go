package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rycusapp/rycus-cli/internal/client/models"
	"github.com/rycusapp/rycus-cli/internal/common"
	"github.com/rycusapp/rycus-cli/internal/logging"
)

// HTTPClient is the JSON/HTTP implementation of Client.
//
// The bearer token is consumed once per outgoing request to populate the
// authorization header and is never logged. A per-install client ID header is
// attached so the backend can correlate requests from one device.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	log      logging.Logger
	clientID string

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration, clientID string, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		log:      log,
		clientID: clientID,
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do issues a JSON request and returns the response body for 2xx answers.
// Transport failures and 5xx map to ErrUnavailable, 401 to ErrUnauthorized,
// and other 4xx to ErrBackend carrying the server's message.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.clientID != "" {
		req.Header.Set(common.ClientIDHeaderName, c.clientID)
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set(common.AuthHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, path, resp.StatusCode)
	default:
		msg := backendMessage(data)
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrBackend, msg)
	}
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (models.User, string, error) {
	payload := map[string]string{"email": email, "password": password}
	data, err := c.do(ctx, http.MethodPost, "/auth/login", nil, payload)
	if err != nil {
		return models.User{}, "", err
	}

	user, token, err := decodeAuthResponse(data)
	if err != nil {
		return models.User{}, "", err
	}
	if user.Email == "" {
		user.Email = email
	}
	return user, token, nil
}

func (c *HTTPClient) Register(ctx context.Context, fullName, email, password string) (models.User, string, error) {
	payload := map[string]string{"fullName": fullName, "email": email, "password": password}
	data, err := c.do(ctx, http.MethodPost, "/auth/register", nil, payload)
	if err != nil {
		return models.User{}, "", err
	}

	user, token, err := decodeAuthResponse(data)
	if err != nil {
		return models.User{}, "", err
	}
	if user.Email == "" {
		user.Email = email
	}
	if user.Name == "" {
		user.Name = fullName
	}
	return user, token, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context, email string) (models.Patch, error) {
	q := url.Values{"email": {email}}
	data, err := c.do(ctx, http.MethodGet, "/users/me", q, nil)
	if err != nil {
		return models.Patch{}, err
	}
	return decodeUserPatch(data)
}

func (c *HTTPClient) ChangeEmail(ctx context.Context, currentEmail, newEmail, password string) error {
	payload := map[string]string{
		"currentEmail": currentEmail,
		"newEmail":     newEmail,
		"password":     password,
	}
	_, err := c.do(ctx, http.MethodPost, "/auth/change-email", nil, payload)
	return err
}

func (c *HTTPClient) BillingStatus(ctx context.Context, email string) (models.BillingStatus, error) {
	q := url.Values{"email": {email}}
	data, err := c.do(ctx, http.MethodGet, "/billing/status", q, nil)
	if err != nil {
		return models.BillingStatus{}, err
	}
	return decodeBillingStatus(data)
}

func (c *HTTPClient) Checkout(ctx context.Context, email, returnTo string) (models.CheckoutSession, error) {
	payload := map[string]string{"email": email, "returnTo": returnTo}
	data, err := c.do(ctx, http.MethodPost, "/billing/checkout", nil, payload)
	if err != nil {
		return models.CheckoutSession{}, err
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return models.CheckoutSession{}, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	u, ok := stringAt(m, "url", "checkoutUrl", "checkout_url")
	if !ok {
		return models.CheckoutSession{}, fmt.Errorf("%w: missing checkout URL", ErrBackend)
	}
	return models.CheckoutSession{URL: u}, nil
}

func (c *HTTPClient) UnreadCount(ctx context.Context, email string) (int, error) {
	q := url.Values{"userEmail": {email}}
	data, err := c.do(ctx, http.MethodGet, "/messages/unread-count", q, nil)
	if err != nil {
		return 0, err
	}

	// The endpoint answers with a bare number.
	var n int
	if err := json.Unmarshal(bytes.TrimSpace(data), &n); err != nil {
		return 0, fmt.Errorf("failed to decode unread count: %w", err)
	}
	return n, nil
}

func (c *HTTPClient) PendingConnections(ctx context.Context, email string) (int, error) {
	q := url.Values{"email": {email}}
	data, err := c.do(ctx, http.MethodGet, "/connections/pending/count", q, nil)
	if err != nil {
		return 0, err
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("failed to decode pending connections count: %w", err)
	}
	return out.Count, nil
}
