package openstates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/s0up4200/openstates/collection"
)

const (
	// DefaultBaseURL is the root of the Open States v1 API
	DefaultBaseURL = "https://openstates.org/api/v1/"
	// DefaultTimeout bounds a single request when no custom client is given
	DefaultTimeout = 30 * time.Second
	// EnvAPIKey is the environment variable NewClientFromEnv reads
	EnvAPIKey = "OPEN_STATES_KEY"
	// CommitteeSearchQuery is always sent as "q" by ListCommittees unless
	// the caller supplies its own "q".
	CommitteeSearchQuery = "Public Education Committee"

	billsPath       = "bills/"
	legislatorsPath = "legislators/"
	committeesPath  = "committees/"

	// maxErrorBody caps how much of an error response is kept on APIRequestError
	maxErrorBody = 512
)

// Params holds query parameters for a request. Caller params are merged
// last, so they win over injected defaults and even over "apikey".
type Params map[string]string

// Client is an Open States API client.
//
// A Client is not safe for concurrent use: every call records the last
// observed status. Use Clone or separate clients for concurrent callers.
type Client struct {
	baseURL     string
	apiKey      string
	status      *collection.Collection
	statusCheck bool
	userAgent   string
	httpClient  *http.Client
	logger      zerolog.Logger
}

// NewClient creates a new Open States client. It never fails; a missing key
// is reported when an operation is called.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		baseURL:     o.baseURL,
		apiKey:      apiKey,
		statusCheck: o.statusCheck,
		userAgent:   o.userAgent,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// NewClientFromEnv creates a client whose key comes from OPEN_STATES_KEY.
// The variable may be unset.
func NewClientFromEnv(logger zerolog.Logger, opts ...Option) *Client {
	return NewClient(os.Getenv(EnvAPIKey), logger, opts...)
}

// Key returns the configured API key
func (c *Client) Key() string {
	return c.apiKey
}

// SetKey replaces the API key
func (c *Client) SetKey(key string) *Client {
	c.apiKey = key
	return c
}

// Status returns the top-level "status" of the last response that had one,
// or nil if none has been seen.
func (c *Client) Status() *collection.Collection {
	return c.status
}

// Clone returns an independent client with the same key, settings and last
// status. The HTTP transport is shared.
func (c *Client) Clone() *Client {
	clone := *c
	return &clone
}

// ListBills queries bills. The region is accepted for symmetry with the
// other list operations but is not sent; pass "state" in params to scope.
func (c *Client) ListBills(ctx context.Context, region string, params Params) (*collection.Collection, error) {
	if region != "" {
		c.logger.Debug().Str("region", region).Msg("Region is not applied to bill queries")
	}
	return c.makeRequest(ctx, "bills", billsPath, nil, params)
}

// GetBill fetches a single bill by its Open States id
func (c *Client) GetBill(ctx context.Context, id string, params Params) (*collection.Collection, error) {
	// the upstream path has a doubled separator; kept for wire compatibility
	return c.makeRequest(ctx, "bill", billsPath+"/"+id, nil, params)
}

// ListLegislators queries legislators of a state
func (c *Client) ListLegislators(ctx context.Context, region string, params Params) (*collection.Collection, error) {
	return c.makeRequest(ctx, "legislators", legislatorsPath, Params{"state": region}, params)
}

// ListCommittees queries committees of a state matching CommitteeSearchQuery
func (c *Client) ListCommittees(ctx context.Context, region string, params Params) (*collection.Collection, error) {
	defaults := Params{
		"state": region,
		"q":     CommitteeSearchQuery,
	}
	return c.makeRequest(ctx, "committees", committeesPath, defaults, params)
}

// GetCommittee fetches a single committee by its Open States id
func (c *Client) GetCommittee(ctx context.Context, id string, params Params) (*collection.Collection, error) {
	return c.makeRequest(ctx, "committee", committeesPath+"/"+id, nil, params)
}

func (c *Client) checkKey() error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// buildQuery merges apikey, operation defaults and caller params, in that order
func (c *Client) buildQuery(defaults, params Params) url.Values {
	query := url.Values{}
	query.Set("apikey", c.apiKey)
	for k, v := range defaults {
		query.Set(k, v)
	}
	for k, v := range params {
		query.Set(k, v)
	}
	return query
}

// makeRequest performs a GET against path and decodes the body
func (c *Client) makeRequest(ctx context.Context, endpoint, path string, defaults, params Params) (*collection.Collection, error) {
	if err := c.checkKey(); err != nil {
		observeRequest(endpoint, outcomeMissingKey, time.Time{})
		return nil, err
	}

	query := c.buildQuery(defaults, params)
	requestURL := c.baseURL + path + "?" + query.Encode()
	safeURL := redactURL(c.baseURL+path, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		observeRequest(endpoint, outcomeTransportError, time.Time{})
		return nil, &APIRequestError{
			Method:  http.MethodGet,
			URL:     safeURL,
			Message: fmt.Sprintf("failed to create request: %v", redactError(err, safeURL)),
			Err:     err,
		}
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", safeURL).
		Msg("Making Open States API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest(endpoint, outcomeTransportError, start)
		return nil, &APIRequestError{
			Method:  http.MethodGet,
			URL:     safeURL,
			Message: redactError(err, safeURL).Error(),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observeRequest(endpoint, outcomeTransportError, start)
		return nil, &APIRequestError{
			Method:     http.MethodGet,
			URL:        safeURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observeRequest(endpoint, outcomeHTTPError, start)
		snippet := truncate(string(body), maxErrorBody)
		return nil, &APIRequestError{
			Method:     http.MethodGet,
			URL:        safeURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("GET %s resulted in a %s response: %s", safeURL, resp.Status, snippet),
			Body:       snippet,
		}
	}

	data, err := collection.Parse(body)
	if err != nil {
		observeRequest(endpoint, outcomeDecodeError, start)
		return nil, &APIRequestError{
			Method:     http.MethodGet,
			URL:        safeURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to decode response: %v", err),
			Body:       truncate(string(body), maxErrorBody),
			Err:        err,
		}
	}

	if err := c.captureStatus(data, safeURL, resp.StatusCode); err != nil {
		observeRequest(endpoint, outcomeStatusError, start)
		return nil, err
	}

	observeRequest(endpoint, outcomeSuccess, start)
	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("kind", data.Kind().String()).
		Int("size", data.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("Retrieved Open States response")

	return data, nil
}

// captureStatus records a top-level "status" field. Only with status
// checking enabled does a non-OK value become an error.
func (c *Client) captureStatus(data *collection.Collection, safeURL string, statusCode int) error {
	status, ok := data.Get("status")
	if !ok {
		return nil
	}
	c.status = status

	if s, _ := status.Str(); s != "OK" {
		c.logger.Debug().Str("status", status.String()).Msg("Open States response reported non-OK status")
		if c.statusCheck {
			return &APIRequestError{
				Method:     http.MethodGet,
				URL:        safeURL,
				StatusCode: statusCode,
				Message:    "response returned with status: " + status.String(),
			}
		}
	}
	return nil
}

// redactURL renders target with the apikey value hidden
func redactURL(target string, query url.Values) string {
	safe := url.Values{}
	for k, v := range query {
		safe[k] = v
	}
	if safe.Has("apikey") {
		safe.Set("apikey", "REDACTED")
	}
	return target + "?" + safe.Encode()
}

// redactError strips the key from errors produced by net/http, which embed
// the full request URL.
func redactError(err error, safeURL string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = safeURL
	}
	return err
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
