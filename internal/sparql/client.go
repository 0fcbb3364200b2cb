package sparql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/stevehedden/kgcatalog/pkg/errors"
	"github.com/stevehedden/kgcatalog/pkg/logger"
	"github.com/stevehedden/kgcatalog/pkg/metrics"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryAfter = 5 * time.Second
	maxRetryAfter     = 30 * time.Second

	resultsMediaType = "application/sparql-results+json"
)

// Config captures the connection parameters for a SPARQL endpoint.
type Config struct {
	// Endpoint is the query service URL, e.g. https://query.wikidata.org/sparql.
	Endpoint string
	// UserAgent identifies this client to the endpoint. WDQS policy requires
	// scripts to send an identifiable User-Agent with contact information.
	UserAgent string
	// Timeout bounds a single query round-trip so a slow endpoint cannot hang
	// the render cycle.
	Timeout time.Duration
}

// Row is one tabular result row: variable name to plain string value.
type Row map[string]string

// Client executes SELECT queries against a single SPARQL endpoint.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
	now  func() time.Time
}

// Option customises the Client.
type Option func(*Client)

// WithHTTPClient injects a preconfigured HTTP client, primarily for testing.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient constructs a Client. Misconfiguration surfaces here rather than on
// the first query.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		return nil, errors.New("sparql: endpoint is required")
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("sparql: invalid endpoint: %w", err)
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, errors.New("sparql: user agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.WithModule("sparql"),
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// resultsDocument mirrors the SPARQL 1.1 JSON results format.
type resultsDocument struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]binding `json:"bindings"`
	} `json:"results"`
}

type binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Select executes a SELECT query and returns the result rows in endpoint order.
// It makes a single attempt, except for one polite retry when the endpoint
// answers 429 with a Retry-After hint.
func (c *Client) Select(ctx context.Context, query string) ([]Row, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := c.now()
	rows, err := c.selectOnce(ctx, query, true)
	switch {
	case err == nil:
		metrics.SPARQLQueries.WithLabelValues("success").Inc()
		c.log.Debug("query complete",
			zap.Int("rows", len(rows)),
			zap.Duration("duration", c.now().Sub(start)),
		)
	case errors.Is(err, apperrors.ErrBadQueryResponse):
		metrics.SPARQLQueries.WithLabelValues("query_error").Inc()
	default:
		metrics.SPARQLQueries.WithLabelValues("network_error").Inc()
	}

	return rows, err
}

func (c *Client) selectOnce(ctx context.Context, query string, allowRetry bool) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint, nil)
	if err != nil {
		return nil, apperrors.ErrBadQueryResponse.WithInternal(err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", resultsMediaType)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.ErrEndpointUnreachable.WithInternal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests && allowRetry {
		wait := retryAfter(resp.Header.Get("Retry-After"))
		c.log.Warn("endpoint rate limited, retrying once", zap.Duration("retry_after", wait))
		io.Copy(io.Discard, resp.Body) //nolint:errcheck

		select {
		case <-ctx.Done():
			return nil, apperrors.ErrEndpointUnreachable.WithInternal(ctx.Err())
		case <-time.After(wait):
		}
		return c.selectOnce(ctx, query, false)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.ErrBadQueryResponse.WithInternal(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var doc resultsDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apperrors.ErrBadQueryResponse.WithInternal(err)
	}

	rows := make([]Row, 0, len(doc.Results.Bindings))
	for _, b := range doc.Results.Bindings {
		row := make(Row, len(b))
		for name, value := range b {
			row[name] = value.Value
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds <= 0 {
		return defaultRetryAfter
	}

	wait := time.Duration(seconds) * time.Second
	if wait > maxRetryAfter {
		wait = maxRetryAfter
	}
	return wait
}
