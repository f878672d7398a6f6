// Package dropbox implements a minimal Dropbox API v2 client covering the
// operations face-gate needs: content download/upload, delete, folder listing
// and idempotent folder creation. Authentication uses a long-lived refresh
// token exchanged for short-lived access tokens.
package dropbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIURL     = "https://api.dropboxapi.com"
	defaultContentURL = "https://content.dropboxapi.com"
)

// Client is a Dropbox API client. Safe for concurrent use.
type Client struct {
	appKey       string
	appSecret    string
	refreshToken string

	apiURL     string
	contentURL string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a Dropbox client from app credentials. Missing
// credentials are rejected immediately so callers never issue a doomed
// request.
func NewClient(appKey, appSecret, refreshToken string) (*Client, error) {
	return NewClientWithEndpoints(appKey, appSecret, refreshToken, defaultAPIURL, defaultContentURL)
}

// NewClientWithEndpoints creates a client against custom API endpoints.
// Used by tests to point the client at a mock server.
func NewClientWithEndpoints(appKey, appSecret, refreshToken, apiURL, contentURL string) (*Client, error) {
	if appKey == "" || appSecret == "" || refreshToken == "" {
		return nil, &AuthError{Reason: "app key, app secret and refresh token are required"}
	}
	return &Client{
		appKey:       appKey,
		appSecret:    appSecret,
		refreshToken: refreshToken,
		apiURL:       strings.TrimSuffix(apiURL, "/"),
		contentURL:   strings.TrimSuffix(contentURL, "/"),
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// tokenResponse is the OAuth token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid access token, refreshing it when expired.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Refresh one minute early so in-flight requests don't race expiry.
	if c.accessToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("could not create token request: %w", err)
	}
	req.SetBasicAuth(c.appKey, c.appSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ConnectivityError{Op: "token refresh", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ConnectivityError{Op: "token refresh", Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return "", &AuthError{Reason: fmt.Sprintf("token refresh rejected (status %d): %s", resp.StatusCode, string(body))}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ConnectivityError{Op: "token refresh", Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("could not unmarshal token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Reason: "token endpoint returned an empty access token"}
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// apiError is the JSON body Dropbox returns with 409 responses.
type apiError struct {
	ErrorSummary string `json:"error_summary"`
}

// readErrorBody reads the response body for error messages.
// Returns empty string if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}

// classifyStatus converts a non-2xx RPC response into the client's error
// taxonomy. Dropbox encodes domain errors as 409 with an error_summary.
func classifyStatus(op, path string, status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return &AuthError{Reason: fmt.Sprintf("%s on %s rejected: %s", op, path, string(body))}
	case http.StatusConflict:
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		if strings.Contains(apiErr.ErrorSummary, "not_found") {
			return fmt.Errorf("%s %s: %w", op, path, ErrNotFound)
		}
		if strings.Contains(apiErr.ErrorSummary, "conflict") {
			return &ConflictError{Path: path}
		}
		return &ConnectivityError{Op: op, Err: fmt.Errorf("status 409: %s", apiErr.ErrorSummary)}
	default:
		return &ConnectivityError{Op: op, Err: fmt.Errorf("status %d: %s", status, string(body))}
	}
}

// doRPC posts a JSON request to an api.dropboxapi.com endpoint and
// unmarshals the JSON response into result (which may be nil).
func (c *Client) doRPC(ctx context.Context, endpoint, path string, request any, result any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+endpoint, strings.NewReader(string(jsonBody)))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectivityError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectivityError{Op: endpoint, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(endpoint, path, resp.StatusCode, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("could not unmarshal response: %w", err)
		}
	}
	return nil
}
