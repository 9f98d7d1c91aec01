package openstates

import (
	"net/http"
	"strings"
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL     string
	timeout     time.Duration
	httpClient  *http.Client
	userAgent   string
	statusCheck bool
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
}

// WithBaseURL points the client at a different API root, such as a mirror
// or a test server. A trailing slash is added when missing.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL == "" {
			return
		}
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		o.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP client timeout. It has no effect when a custom
// client is supplied with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithStatusCheck makes a response whose top-level "status" is present and
// not "OK" fail with an *APIRequestError. By default the status is only
// recorded.
func WithStatusCheck(enabled bool) Option {
	return func(o *clientOptions) {
		o.statusCheck = enabled
	}
}
