package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	// BaseURL is prefixed to every endpoint, e.g. https://data.usajobs.gov/api.
	BaseURL string
	// Endpoints maps code-list names to paths below BaseURL.
	Endpoints map[string]string
	RetryMax  int
	RetryWait time.Duration // minimum wait between retries; zero keeps the client default
	Timeout   time.Duration
	UserAgent string
	Logger    zerolog.Logger
}

// HTTPSource downloads code lists from the public USAJobs code-list endpoints.
type HTTPSource struct {
	baseURL   string
	endpoints map[string]string
	userAgent string
	client    *retryablehttp.Client
}

// NewHTTP returns an HTTPSource.
func NewHTTP(cfg HTTPConfig) *HTTPSource {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWait > 0 {
		client.RetryWaitMin = cfg.RetryWait
		client.RetryWaitMax = 4 * cfg.RetryWait
	}
	client.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	client.Logger = leveled{log: cfg.Logger}

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for k, v := range cfg.Endpoints {
		endpoints[k] = v
	}
	return &HTTPSource{
		baseURL:   cfg.BaseURL,
		endpoints: endpoints,
		userAgent: cfg.UserAgent,
		client:    client,
	}
}

// Names lists the configured code-list names.
func (s *HTTPSource) Names() []string {
	out := make([]string, 0, len(s.endpoints))
	for k := range s.endpoints {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Load fetches and decodes the named code list.
func (s *HTTPSource) Load(ctx context.Context, name string) ([]map[string]any, error) {
	body, err := s.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return DecodeEntries(body)
}

// Fetch returns the raw response body for name.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	endpoint, ok := s.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("no endpoint configured for code list %q", name)
	}
	u, err := url.JoinPath(s.baseURL, endpoint)
	if err != nil {
		return nil, fmt.Errorf("building URL for %q: %w", name, err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d for %s", resp.StatusCode, u)
	}
	return body, nil
}

// leveled adapts zerolog to retryablehttp.LeveledLogger.
type leveled struct{ log zerolog.Logger }

func (l leveled) Error(msg string, kv ...interface{}) { l.log.Error().Fields(kv).Msg(msg) }
func (l leveled) Info(msg string, kv ...interface{})  { l.log.Info().Fields(kv).Msg(msg) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.log.Debug().Fields(kv).Msg(msg) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.log.Warn().Fields(kv).Msg(msg) }
