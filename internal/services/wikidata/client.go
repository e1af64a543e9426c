// Package wikidata implements the external entity-resolution collaborator:
// the ticker resolver's third tier, querying the Wikidata SPARQL endpoint
// for a company's listed ticker.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the public Wikidata SPARQL endpoint
	DefaultEndpoint = "https://query.wikidata.org/sparql"

	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	// Wikidata asks clients to stay well below 5 rps.
	DefaultRateLimit = 2

	userAgent = "medsignals/1.0 (signal engine; entity resolution)"
)

// tickerQuery finds the ticker (P249) and exchange (P414) of an entity by
// its English label
const tickerQuery = `SELECT ?ticker ?exchangeLabel WHERE {
  ?company rdfs:label "%s"@en;
           wdt:P249 ?ticker;
           wdt:P414 ?exchange.
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 1`

// Client queries the Wikidata SPARQL endpoint. Implements
// interfaces.EntityLookup.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithEndpoint sets a custom SPARQL endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

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

// NewClient creates a new Wikidata SPARQL client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// sparqlResponse is the subset of the SPARQL JSON result format we read
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// LookupTicker resolves a company name to its listed ticker. Returns
// (nil, nil) when Wikidata has no match.
func (c *Client) LookupTicker(ctx context.Context, company string) (*interfaces.EntityMatch, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Escape quotes so the label can be embedded in the query literal
	label := strings.ReplaceAll(strings.TrimSpace(company), `"`, `\"`)
	query := fmt.Sprintf(tickerQuery, label)

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	reqURL := fmt.Sprintf("%s?%s", c.endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", userAgent)

	if c.logger != nil {
		c.logger.Debug().
			Str("company", company).
			Msg("Wikidata entity lookup")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("wikidata query returned status %d: %s", resp.StatusCode, string(body))
	}

	var result sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode sparql response: %w", err)
	}

	if len(result.Results.Bindings) == 0 {
		return nil, nil
	}

	binding := result.Results.Bindings[0]
	ticker := strings.ToUpper(binding["ticker"].Value)
	if ticker == "" {
		return nil, nil
	}

	return &interfaces.EntityMatch{
		Ticker:          ticker,
		Company:         company,
		Exchange:        binding["exchangeLabel"].Value,
		MatchConfidence: 0.5,
	}, nil
}
