package acumatica

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mld/backend/internal/domain/shared"
	"github.com/mld/backend/internal/infrastructure/xmltext"
)

// maxResponseSize limits response bodies to prevent memory exhaustion
const maxResponseSize = 50 * 1024 * 1024 // 50MB

// Config holds the connection settings for the Acumatica ERP instance.
type Config struct {
	BaseURL      string
	ODataURL     string
	Username     string
	Password     string
	ClientID     string
	ClientSecret string

	JobSubmitPath string
	JobStatusPath string

	TimeoutSeconds    int
	JobPollSeconds    int
	JobTimeoutSeconds int
}

// Validate checks required fields and applies defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" && c.ODataURL == "" {
		return fmt.Errorf("%w: acumatica base URL is required", shared.ErrInvalidInput)
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("%w: acumatica credentials are required", shared.ErrInvalidInput)
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if c.ODataURL == "" {
		c.ODataURL = base + "/OData/MLD/Closeout%20Inventory%20Counts"
	}
	if c.JobSubmitPath == "" {
		c.JobSubmitPath = "/api/export/closeout"
	}
	if c.JobStatusPath == "" {
		c.JobStatusPath = "/api/export/closeout/status"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.JobPollSeconds <= 0 {
		c.JobPollSeconds = 5
	}
	if c.JobTimeoutSeconds <= 0 {
		c.JobTimeoutSeconds = 300
	}
	return nil
}

// JobState is the lifecycle state of an export job.
type JobState string

const (
	JobStateSubmitted JobState = "submitted"
	JobStatePolling   JobState = "polling"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
	JobStateTimedOut  JobState = "timed_out"
)

// JobStatus is one poll result for an export job.
type JobStatus struct {
	State JobState
	Rows  []map[string]any
	Error string
}

// Client talks to the Acumatica ERP. The OData snapshot feed uses basic
// auth; the export job API uses a bearer token cached per client instance.
type Client struct {
	config     *Config
	httpClient *http.Client
	tokens     tokenCache
}

// NewClient creates an Acumatica client with the given configuration.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// FetchSnapshot pulls the closeout inventory counts feed and returns the
// normalized rows.
func (c *Client) FetchSnapshot(ctx context.Context) ([]InventoryItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.ODataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create OData request: %w", err)
	}
	req.SetBasicAuth(c.config.Username, c.config.Password)
	req.Header.Set("Accept", "application/xml")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return ParseAtomSnapshot(body)
}

// FetchSnapshotViaJob submits an export job, waits for it to finish and
// returns the normalized rows.
func (c *Client) FetchSnapshotViaJob(ctx context.Context) ([]InventoryItem, error) {
	jobID, err := c.SubmitExportJob(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.WaitForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	items := make([]InventoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromRow(row))
	}
	return items, nil
}

// SubmitExportJob starts a closeout inventory export and returns the job id.
func (c *Client) SubmitExportJob(ctx context.Context) (string, error) {
	body, err := c.bearerRequest(ctx, http.MethodPost, c.config.JobSubmitPath, map[string]any{})
	if err != nil {
		return "", err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: invalid job submit response: %v", shared.ErrExternalService, err)
	}
	for _, key := range []string{"jobId", "JobID", "id"} {
		if id := strings.TrimSpace(xmltext.Coerce(payload[key])); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: job submit response carries no job id", shared.ErrExternalService)
}

// PollJob fetches the current status of an export job.
func (c *Client) PollJob(ctx context.Context, jobID string) (*JobStatus, error) {
	path := c.config.JobStatusPath + "?jobId=" + url.QueryEscape(jobID)
	body, err := c.bearerRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Status string           `json:"status"`
		Rows   []map[string]any `json:"rows"`
		Result []map[string]any `json:"result"`
		Error  string           `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid job status response: %v", shared.ErrExternalService, err)
	}

	status := &JobStatus{Error: payload.Error, Rows: payload.Rows}
	if len(status.Rows) == 0 {
		status.Rows = payload.Result
	}
	switch strings.ToLower(payload.Status) {
	case "succeeded", "completed", "success":
		status.State = JobStateSucceeded
	case "failed", "error":
		status.State = JobStateFailed
	default:
		status.State = JobStatePolling
	}
	return status, nil
}

// WaitForJob polls an export job at a fixed interval until it reaches a
// terminal state or the timeout budget elapses.
func (c *Client) WaitForJob(ctx context.Context, jobID string) ([]map[string]any, error) {
	deadline := time.Now().Add(time.Duration(c.config.JobTimeoutSeconds) * time.Second)
	interval := time.Duration(c.config.JobPollSeconds) * time.Second

	for {
		status, err := c.PollJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		switch status.State {
		case JobStateSucceeded:
			return status.Rows, nil
		case JobStateFailed:
			return nil, fmt.Errorf("%w: export job %s failed: %s", shared.ErrExternalService, jobID, status.Error)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: export job %s exceeded %ds budget", shared.ErrJobTimeout, jobID, c.config.JobTimeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: export job %s wait canceled: %v", shared.ErrJobTimeout, jobID, ctx.Err())
		case <-time.After(interval):
		}
	}
}

func (c *Client) bearerRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.config.BaseURL, "/")+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create job request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

// bearerToken returns a cached token or authenticates for a fresh one.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.get(time.Now()); ok {
		return token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("username", c.config.Username)
	form.Set("password", c.config.Password)
	form.Set("scope", "api")

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/identity/connect/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: invalid token response: %v", shared.ErrExternalService, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: token response carries no access token", shared.ErrExternalService)
	}
	ttl := time.Duration(payload.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c.tokens.set(payload.AccessToken, ttl, time.Now())
	return payload.AccessToken, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: acumatica request failed: %v", shared.ErrExternalService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read acumatica response: %v", shared.ErrExternalService, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.clear()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: acumatica returned status %d: %s",
			shared.ErrExternalService, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
