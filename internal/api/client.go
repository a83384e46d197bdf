package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-client/internal/config"
	"github.com/iliyamo/cinema-booking-client/internal/session"
)

const refreshEndpoint = "/auth/refresh"

// Client issues authenticated requests against the platform REST API.  On a
// 401 it runs exactly one refresh-and-retry cycle; if that fails the session
// is wiped and the user is navigated to the login surface.  Both side effects
// are deliberate: a stale session must not linger and a soft redirect would
// leave stale view state behind.
type Client struct {
	baseURL  string
	loginURL string
	http     *http.Client
	session  *session.Session
	nav      Navigator
	log      *zap.SugaredLogger
}

// New builds a Client from the app config.  nav may be nil, in which case
// session loss only clears storage without navigating.
func New(cfg config.Config, sess *session.Session, nav Navigator, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:  cfg.APIBaseURL,
		loginURL: cfg.LoginURL,
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
		session:  sess,
		nav:      nav,
		log:      log.Named("api"),
	}
}

// Get issues an authenticated GET and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, true)
}

// Post issues an authenticated POST.  body is JSON-encoded unless it is a
// raw []byte, which is sent untouched without a JSON content type.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, endpoint, body, true)
}

// Patch issues an authenticated PATCH.
func (c *Client) Patch(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, endpoint, body, true)
}

// Put issues an authenticated PUT.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, endpoint, body, true)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, true)
}

// do performs one request.  allowRefresh guards the retry cycle: the retried
// request and the refresh call itself run with it disabled, so a 401 can
// trigger at most one refresh.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, allowRefresh bool) (json.RawMessage, error) {
	payload, contentType, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	resp, raw, err := c.send(ctx, method, endpoint, payload, contentType)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && allowRefresh && endpoint != refreshEndpoint {
		if err := c.refresh(ctx); err != nil {
			return nil, err
		}
		// One retry with the new token; a second 401 surfaces as-is.
		resp, raw, err = c.send(ctx, method, endpoint, payload, contentType)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, raw)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// send builds and executes a single HTTP request, returning the response and
// its fully read body.
func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, contentType string) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, raw, nil
}

// refresh exchanges the stored refresh token for a new access token.  Any
// failure (including the absence of a refresh token) destroys the session and
// forces navigation to login.
func (c *Client) refresh(ctx context.Context) error {
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		c.expireSession()
		return ErrAuthRequired
	}

	raw, err := c.do(ctx, http.MethodPost, refreshEndpoint, map[string]string{
		"refreshToken": refreshToken,
	}, false)
	if err != nil {
		c.expireSession()
		return fmt.Errorf("refresh session: %w", err)
	}

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(raw, &result); err != nil || result.AccessToken == "" {
		c.expireSession()
		return fmt.Errorf("refresh session: malformed response")
	}
	if err := c.session.SetAccessToken(result.AccessToken); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	c.log.Debugw("access token refreshed")
	return nil
}

// expireSession wipes all stored session state and sends the user to the
// login surface.
func (c *Client) expireSession() {
	c.session.Clear()
	c.log.Infow("session expired, redirecting to login")
	if c.nav != nil {
		if err := c.nav.Open(c.loginURL); err != nil {
			c.log.Warnw("open login surface failed", "err", err)
		}
	}
}

// encodeBody turns the request body into bytes plus a content type.  A raw
// []byte passes through untouched (binary upload), everything else is JSON.
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "application/octet-stream", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	}
}
