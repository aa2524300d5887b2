package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// API defines the read-only endpoints of the cloud provider. Paged methods
// return one page per call; following cursors is the caller's job.
type API interface {
	GetServer(ctx context.Context, mbpkgid int) (*Server, error)
	GetJobsPage(ctx context.Context, mbpkgid int, cursor string) (Page[Job], error)
	GetIPv4(ctx context.Context, mbpkgid int) ([]IPAddress, error)
	GetIPv6(ctx context.Context, mbpkgid int) ([]IPAddress, error)
	GetStatus(ctx context.Context, mbpkgid int) (*ServerStatus, error)
	GetServersPage(ctx context.Context, cursor string) (Page[Server], error)
	GetLocations(ctx context.Context) ([]Location, error)
	GetPackages(ctx context.Context) ([]Package, error)
	GetImagesPage(ctx context.Context, cursor string) (Page[Image], error)
	GetZonesPage(ctx context.Context, cursor string) (Page[Zone], error)
	GetZone(ctx context.Context, zoneID int) (*Zone, error)
	GetZoneRecordsPage(ctx context.Context, zoneID int, cursor string) (Page[ZoneRecord], error)
	GetSSHKeys(ctx context.Context) ([]SSHKey, error)
	GetAccountDetails(ctx context.Context) (*AccountDetails, error)
	GetInvoicesPage(ctx context.Context, cursor string) (Page[Invoice], error)
}

// Doer is the subset of *http.Client used by DefaultClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds configuration for DefaultClient.
type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	UserAgent      string
}

// Option customises a DefaultClient.
type Option func(*DefaultClient)

// WithDoer replaces the underlying HTTP client.
func WithDoer(d Doer) Option {
	return func(c *DefaultClient) { c.http = d }
}

// DefaultClient implements API over net/http.
type DefaultClient struct {
	http   Doer
	config Config
	now    func() time.Time
}

const (
	defaultRequestTimeout = 30 * time.Second
	defaultUserAgent      = "nactl"
	maxResponseBytes      = 32 * 1024 * 1024
)

// New constructs a DefaultClient. BaseURL and APIKey are required.
func New(cfg Config, opts ...Option) (*DefaultClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("APIKey is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	c := &DefaultClient{
		http: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the wrapper every provider response is delivered in.
type envelope struct {
	Result  string          `json:"result"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Next    string          `json:"next"`
}

// doGet performs one GET against path (relative to BaseURL) under the
// configured request timeout and returns the decoded envelope. Every failure
// is returned as an *APIError.
func (c *DefaultClient) doGet(ctx context.Context, op, path string, query url.Values) (*envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	if query == nil {
		query = url.Values{}
	}
	base := strings.TrimRight(c.config.BaseURL, "/") + path + "?"
	query.Set("key", redactedKey)
	safeURL := base + query.Encode()
	query.Set("key", c.config.APIKey)
	u := base + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &APIError{Kind: KindBadRequest, Op: op, Err: fmt.Errorf("create request: %w", redactURL(err, safeURL))}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-Id", requestID)

	logger := log.WithFields(log.Fields{"op": op, "request_id": requestID})
	logger.Debugf("GET %s", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(op, fmt.Errorf("do request: %w", redactURL(err, safeURL)))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, networkError(op, fmt.Errorf("read body: %w", redactURL(err, safeURL)))
	}
	if len(body) > maxResponseBytes {
		return nil, &APIError{Kind: KindDecode, Op: op, Status: resp.StatusCode,
			Err: fmt.Errorf("response body exceeds %d MB limit", maxResponseBytes/(1024*1024))}
	}

	if kind, failed := kindForStatus(resp.StatusCode); failed {
		apiErr := &APIError{Kind: kind, Op: op, Status: resp.StatusCode,
			Err: fmt.Errorf("unexpected status: %s", truncate(body, 200))}
		if kind == KindRateLimited {
			apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), c.now())
		}
		logger.Debugf("GET %s failed: %v", path, apiErr)
		return nil, apiErr
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{Kind: KindDecode, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if env.Result != "" && env.Result != "success" {
		kind, failed := kindForStatus(env.Code)
		if !failed {
			kind = KindDecode
		}
		return nil, &APIError{Kind: kind, Op: op, Status: env.Code,
			Err: fmt.Errorf("provider reported %q: %s", env.Result, env.Message)}
	}
	if len(env.Data) == 0 {
		return nil, &APIError{Kind: KindDecode, Op: op, Status: resp.StatusCode, Err: errors.New("response has no data")}
	}
	return &env, nil
}

// redactedKey stands in for the API key in any URL that ends up in error text.
const redactedKey = "REDACTED"

// redactURL replaces the URL carried by a *url.Error with safeURL, which
// has the key query parameter masked.
func redactURL(err error, safeURL string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = safeURL
	}
	return err
}

// getJSON fetches path and decodes the envelope payload into T. A null
// payload decodes to the zero value, which suits list endpoints.
func getJSON[T any](ctx context.Context, c *DefaultClient, op, path string) (T, error) {
	var out T
	env, err := c.doGet(ctx, op, path, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &APIError{Kind: KindDecode, Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return out, nil
}

// getObject fetches a single record. Unlike getJSON, a null payload is a
// decode failure.
func getObject[T any](ctx context.Context, c *DefaultClient, op, path string) (*T, error) {
	env, err := c.doGet(ctx, op, path, nil)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return nil, &APIError{Kind: KindDecode, Op: op, Err: errors.New("response data is null")}
	}
	out := new(T)
	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, &APIError{Kind: KindDecode, Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return out, nil
}

// getPage fetches one page of path starting at cursor.
func getPage[T any](ctx context.Context, c *DefaultClient, op, path, cursor string) (Page[T], error) {
	var q url.Values
	if cursor != "" {
		q = url.Values{"cursor": {cursor}}
	}
	env, err := c.doGet(ctx, op, path, q)
	if err != nil {
		return Page[T]{}, err
	}
	var items []T
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return Page[T]{}, &APIError{Kind: KindDecode, Op: op, Err: fmt.Errorf("decode page: %w", err)}
	}
	return Page[T]{Items: items, Next: env.Next}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
