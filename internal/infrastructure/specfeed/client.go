package specfeed

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mld/backend/internal/domain/shared"
)

// maxFeedSize limits the downloaded archive size to prevent memory exhaustion
const maxFeedSize = 50 * 1024 * 1024 // 50MB max archive

// Config holds the connection settings for the manufacturer spec feed.
type Config struct {
	BaseURL        string
	Password       string
	TimeoutSeconds int
}

// Validate checks that the config is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: spec feed base URL is required", shared.ErrInvalidInput)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: spec feed password is required", shared.ErrInvalidInput)
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
	return nil
}

// Client downloads zipped spec feeds from the manufacturer data service.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a spec feed client with the given configuration.
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

// FetchFeed downloads the zipped feed for one manufacturer code and returns
// the parsed spec documents.
func (c *Client) FetchFeed(ctx context.Context, manufacturerCode string) (*Feed, error) {
	raw, err := c.fetchArchive(ctx, manufacturerCode)
	if err != nil {
		return nil, err
	}
	xmlData, err := extractFirstXML(raw)
	if err != nil {
		return nil, err
	}
	return Parse(xmlData)
}

func (c *Client) fetchArchive(ctx context.Context, manufacturerCode string) ([]byte, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/specs.zip"
	query := url.Values{}
	query.Set("PW", c.config.Password)
	query.Set("MAN", manufacturerCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: spec feed request failed: %v", shared.ErrExternalService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: spec feed returned status %d for manufacturer %s",
			shared.ErrExternalService, resp.StatusCode, manufacturerCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read feed archive: %v", shared.ErrExternalService, err)
	}
	return body, nil
}

// extractFirstXML opens the archive and returns the content of its first
// .xml member. Feeds ship exactly one document per archive.
func extractFirstXML(archive []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("%w: feed archive is not a valid zip: %v", shared.ErrExternalService, err)
	}
	for _, member := range reader.File {
		if !strings.HasSuffix(strings.ToLower(member.Name), ".xml") {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open feed member %s: %v", shared.ErrExternalService, member.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxFeedSize))
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read feed member %s: %v", shared.ErrExternalService, member.Name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: feed archive contains no xml document", shared.ErrExternalService)
}
