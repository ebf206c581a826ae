package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// minSearchLength is the shortest partial job number the search endpoint accepts.
const minSearchLength = 4

var (
	// ErrNetworkUnavailable indicates the backend could not be reached at all.
	ErrNetworkUnavailable = errors.New("backend unreachable")
	// ErrSearchTooShort indicates the partial job number is below the minimum length.
	ErrSearchTooShort = fmt.Errorf("partial job number must be at least %d characters", minSearchLength)
)

// StatusError is a non-2xx response from the backend
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Config contains backend client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client provides HTTP client functionality for the job-tracking backend
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a new backend HTTP client
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken drops the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login authenticates with the backend and installs the returned token on
// the client for subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	c.SetToken(resp.Token)
	c.logger.Info("logged in", slog.String("username", resp.Username))
	return &resp, nil
}

// Signup creates a new account.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	req := SignupRequest{Username: username, Password: password}
	return c.doJSON(ctx, http.MethodPost, "/users", req, nil)
}

// SearchJobNumbers returns job numbers matching a partial prefix. The
// backend requires at least four characters; shorter input fails fast
// without a network round trip.
func (c *Client) SearchJobNumbers(ctx context.Context, partial string) ([]string, error) {
	if len(strings.TrimSpace(partial)) < minSearchLength {
		return nil, ErrSearchTooShort
	}

	var numbers []string
	path := "/jobs/search-numbers/" + url.PathEscape(strings.TrimSpace(partial))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

// JobDetails fetches the detail rows for one job number.
func (c *Client) JobDetails(ctx context.Context, jobNumber string) (*JobDetailsResponse, error) {
	var resp JobDetailsResponse
	path := "/jobs/details/" + url.PathEscape(jobNumber)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveVoiceNote persists one voice note against a single job number.
func (c *Client) SaveVoiceNote(ctx context.Context, req SaveVoiceNoteRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/voice-notes", req, nil)
}

// ListJobAudio returns the voice note records attached to a job. Payloads
// are omitted; use FetchAudio for playback.
func (c *Client) ListJobAudio(ctx context.Context, jobNumber, userID string) ([]AudioRecord, error) {
	var records []AudioRecord
	path := "/voice-notes/job/" + url.PathEscape(jobNumber) + "?userId=" + url.QueryEscape(userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchAudio retrieves the full audio payload for one stored record.
func (c *Client) FetchAudio(ctx context.Context, id string) (*AudioPayload, error) {
	var resp AudioPayload
	path := "/voice-notes/audio/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Analyze submits a recording for summarization.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	var resp AnalyzeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/voice-notes/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doJSON performs one JSON request/response round trip. A nil body sends no
// payload; a nil out discards the response body after the status check.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if token := c.currentToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Message: extractMessage(respBody)}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return nil
}

// extractMessage pulls a human-readable message out of an error response
// body, falling back to the raw text.
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
