// -----------------------------------------------------------------------
// Job API Client - Bearer-authenticated HTTP client with token refresh
// -----------------------------------------------------------------------

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

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/aestimo/internal/interfaces"
	"github.com/ternarybob/aestimo/internal/models"
)

const (
	// DefaultPollTimeout bounds the claim GET.
	DefaultPollTimeout = 30 * time.Second

	// DefaultResultTimeout bounds result and admin POSTs.
	DefaultResultTimeout = 60 * time.Second

	// DefaultRateLimit is the default request rate (requests per second).
	DefaultRateLimit = 10
)

// Client is the job API client. It owns one bearer token bound to
// (endpoint, username, password), re-authenticating on first use and on any
// 401, and retrying the failed call exactly once after a refresh. The
// runtime is single-threaded for protocol calls; the token mutex exists so
// the refresh is safe regardless.
type Client struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter

	pollTimeout   time.Duration
	resultTimeout time.Duration

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

var _ interfaces.APIClient = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithPollTimeout sets the claim GET timeout.
func WithPollTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.pollTimeout = d
	}
}

// WithResultTimeout sets the result/admin POST timeout.
func WithResultTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.resultTimeout = d
	}
}

// NewClient creates a job API client for the given endpoint and credentials.
func NewClient(endpoint, username, password string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:      strings.TrimRight(endpoint, "/"),
		username:      username,
		password:      password,
		httpClient:    &http.Client{},
		logger:        arbor.NewLogger(),
		limiter:       rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		pollTimeout:   DefaultPollTimeout,
		resultTimeout: DefaultResultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login authenticates via POST /auth/login and caches the bearer token.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{Username: c.username, Password: c.password})
	if err != nil {
		return models.NewJobError(models.ErrKindInternal, "failed to encode login request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.resultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return models.NewJobError(models.ErrKindInternal, "failed to build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.NewJobError(models.ErrKindTransient, "login request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return models.Errorf(models.ErrKindAuthFailure, "credentials rejected for %s", c.username)
	case resp.StatusCode >= 500:
		return models.Errorf(models.ErrKindTransient, "login returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return models.Errorf(models.ErrKindBadRequest, "login returned %d", resp.StatusCode)
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return models.NewJobError(models.ErrKindProtocol, "malformed login response", err)
	}
	if login.Token == "" {
		return models.Errorf(models.ErrKindProtocol, "login response missing token")
	}

	c.token = login.Token
	c.expiresAt = login.ExpiresAt
	c.logger.Debug().Str("expires_at", login.ExpiresAt.Format(time.RFC3339)).Msg("Authenticated with job API")
	return nil
}

func (c *Client) currentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		if err := c.loginLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	if err := c.loginLocked(ctx); err != nil {
		return "", err
	}
	return c.token, nil
}

// do executes one authenticated JSON request, retrying exactly once after a
// token refresh when the API answers 401. A second 401 is a hard auth
// failure. Returns the status code and raw body for the caller to decode.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, timeout time.Duration) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, models.NewJobError(models.ErrKindTransient, "rate limiter interrupted", err)
	}

	token, err := c.currentToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	status, data, err := c.doOnce(ctx, method, path, query, body, token, timeout)
	if err != nil {
		return 0, nil, err
	}
	if status == http.StatusUnauthorized {
		c.logger.Debug().Str("path", path).Msg("Token rejected, refreshing and retrying once")
		token, err = c.refreshToken(ctx)
		if err != nil {
			return 0, nil, err
		}
		status, data, err = c.doOnce(ctx, method, path, query, body, token, timeout)
		if err != nil {
			return 0, nil, err
		}
		if status == http.StatusUnauthorized {
			return 0, nil, models.Errorf(models.ErrKindAuthFailure, "request to %s unauthorized after token refresh", path)
		}
	}

	switch {
	case status >= 500:
		return status, data, models.Errorf(models.ErrKindTransient, "%s %s returned %d", method, path, status)
	case status >= 400:
		return status, data, models.Errorf(models.ErrKindBadRequest, "%s %s returned %d", method, path, status)
	}
	return status, data, nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body any, token string, timeout time.Duration) (int, []byte, error) {
	target := c.endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, models.NewJobError(models.ErrKindInternal, "failed to encode request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return 0, nil, models.NewJobError(models.ErrKindInternal, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, models.NewJobError(models.ErrKindTransient, fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, models.NewJobError(models.ErrKindTransient, "failed to read response body", err)
	}
	return resp.StatusCode, data, nil
}

// PollJob requests a claim for any of the configured types via
// GET /jobs/poll. A 204 or empty body means no job was available and is
// returned as a nil assignment with a nil error.
func (c *Client) PollJob(ctx context.Context, types []models.JobType) (*models.JobAssignment, error) {
	query := url.Values{"types": []string{models.JobTypesCSV(types)}}

	status, data, err := c.do(ctx, http.MethodGet, "/jobs/poll", query, nil, c.pollTimeout)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var assignment models.JobAssignment
	if err := json.Unmarshal(data, &assignment); err != nil {
		return nil, models.NewJobError(models.ErrKindProtocol, "malformed job assignment", err)
	}
	if assignment.AssignmentID == "" {
		return nil, models.Errorf(models.ErrKindProtocol, "job assignment missing assignment_id")
	}
	return &assignment, nil
}

// SubmitResult posts the terminal result for an assignment.
func (c *Client) SubmitResult(ctx context.Context, assignmentID string, result models.JobResult) error {
	path := "/jobs/assignments/" + url.PathEscape(assignmentID) + "/result"
	_, _, err := c.do(ctx, http.MethodPost, path, nil, result, c.resultTimeout)
	return err
}

// PostDataSpecification pushes the regional data-spec payload.
func (c *Client) PostDataSpecification(ctx context.Context, payload *models.DataSpecificationPayload) error {
	_, _, err := c.do(ctx, http.MethodPost, "/admin/data-specification", nil, payload, c.resultTimeout)
	return err
}

// SignOff notifies the API of a clean shutdown. Callers treat failures as
// best-effort.
func (c *Client) SignOff(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodPost, "/jobs/sign-off", nil, nil, c.resultTimeout)
	return err
}
