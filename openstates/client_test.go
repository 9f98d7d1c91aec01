package openstates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/openstates/collection"
)

const testKey = "test-key"

// fakeAPI records every request and answers with a fixed status and body
type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	body     string
}

func newFakeAPI(t *testing.T, status int, body string) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{status: status, body: body}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.requests = append(api.requests, r)
		status, body := api.status, api.body
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return api, server
}

func (f *fakeAPI) setBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = body
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func newTestClient(baseURL, key string, opts ...Option) *Client {
	opts = append([]Option{WithBaseURL(baseURL)}, opts...)
	return NewClient(key, zerolog.Nop(), opts...)
}

type operation struct {
	name string
	call func(ctx context.Context, c *Client) (*collection.Collection, error)
}

func allOperations() []operation {
	return []operation{
		{"ListBills", func(ctx context.Context, c *Client) (*collection.Collection, error) {
			return c.ListBills(ctx, "tx", nil)
		}},
		{"GetBill", func(ctx context.Context, c *Client) (*collection.Collection, error) {
			return c.GetBill(ctx, "TXB00012345", nil)
		}},
		{"ListLegislators", func(ctx context.Context, c *Client) (*collection.Collection, error) {
			return c.ListLegislators(ctx, "tx", nil)
		}},
		{"ListCommittees", func(ctx context.Context, c *Client) (*collection.Collection, error) {
			return c.ListCommittees(ctx, "tx", nil)
		}},
		{"GetCommittee", func(ctx context.Context, c *Client) (*collection.Collection, error) {
			return c.GetCommittee(ctx, "TXC000001", nil)
		}},
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("", zerolog.Nop())
	require.NotNil(t, client)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Empty(t, client.Key())
	assert.Nil(t, client.Status())
}

func TestNewClientFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")
	assert.Equal(t, "from-env", NewClientFromEnv(zerolog.Nop()).Key())

	t.Setenv(EnvAPIKey, "")
	assert.Empty(t, NewClientFromEnv(zerolog.Nop()).Key())
}

func TestClientOptions(t *testing.T) {
	t.Run("with timeout", func(t *testing.T) {
		client := NewClient(testKey, zerolog.Nop(), WithTimeout(5*time.Second))
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with base url adds trailing slash", func(t *testing.T) {
		client := NewClient(testKey, zerolog.Nop(), WithBaseURL("http://mirror.local/api/v1"))
		assert.Equal(t, "http://mirror.local/api/v1/", client.baseURL)
	})

	t.Run("with custom http client", func(t *testing.T) {
		custom := &http.Client{Timeout: 10 * time.Second}
		client := NewClient(testKey, zerolog.Nop(), WithHTTPClient(custom), WithTimeout(time.Second))
		assert.Same(t, custom, client.httpClient)
	})

	t.Run("with user agent", func(t *testing.T) {
		api, server := newFakeAPI(t, http.StatusOK, `[]`)
		client := newTestClient(server.URL, testKey, WithUserAgent("openstates-test/1.0"))
		_, err := client.ListLegislators(context.Background(), "tx", nil)
		require.NoError(t, err)
		assert.Equal(t, "openstates-test/1.0", api.last().Header.Get("User-Agent"))
	})
}

func TestKeyAccessors(t *testing.T) {
	client := NewClient("", zerolog.Nop())
	same := client.SetKey("abc")
	assert.Same(t, client, same)
	assert.Equal(t, "abc", client.Key())
}

func TestMissingKeyNeverCallsNetwork(t *testing.T) {
	api, server := newFakeAPI(t, http.StatusOK, `{}`)

	for _, op := range allOperations() {
		t.Run(op.name, func(t *testing.T) {
			client := newTestClient(server.URL, "")
			data, err := op.call(context.Background(), client)

			require.Error(t, err)
			assert.Nil(t, data)
			assert.ErrorIs(t, err, ErrMissingAPIKey)

			var keyErr *MissingAPIKeyError
			assert.True(t, errors.As(err, &keyErr))
		})
	}

	assert.Equal(t, 0, api.count())
}

func TestMissingKeyRecoverable(t *testing.T) {
	api, server := newFakeAPI(t, http.StatusOK, `[]`)
	client := newTestClient(server.URL, "")

	_, err := client.ListLegislators(context.Background(), "tx", nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = client.SetKey(testKey).ListLegislators(context.Background(), "tx", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count())
}

func TestRequestPaths(t *testing.T) {
	tests := []struct {
		name     string
		call     func(ctx context.Context, c *Client) (*collection.Collection, error)
		wantPath string
	}{
		{
			name: "list bills",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.ListBills(ctx, "tx", nil)
			},
			wantPath: "/bills/",
		},
		{
			name: "get bill keeps double slash",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.GetBill(ctx, "HB1", nil)
			},
			wantPath: "/bills//HB1",
		},
		{
			name: "list legislators",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.ListLegislators(ctx, "tx", nil)
			},
			wantPath: "/legislators/",
		},
		{
			name: "list committees",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.ListCommittees(ctx, "tx", nil)
			},
			wantPath: "/committees/",
		},
		{
			name: "get committee keeps double slash",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.GetCommittee(ctx, "TXC000001", nil)
			},
			wantPath: "/committees//TXC000001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, server := newFakeAPI(t, http.StatusOK, `{}`)
			client := newTestClient(server.URL, testKey)

			_, err := tt.call(context.Background(), client)
			require.NoError(t, err)

			req := api.last()
			require.NotNil(t, req)
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, tt.wantPath, req.URL.Path)
			assert.Equal(t, testKey, req.URL.Query().Get("apikey"))
			assert.Equal(t, "application/json", req.Header.Get("Accept"))
		})
	}
}

func TestParameterMerge(t *testing.T) {
	tests := []struct {
		name      string
		call      func(ctx context.Context, c *Client) (*collection.Collection, error)
		wantQuery url.Values
	}{
		{
			name: "caller params win over injected state",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.ListLegislators(ctx, "tx", Params{"state": "ca", "sort": "date"})
			},
			wantQuery: url.Values{"apikey": {testKey}, "state": {"ca"}, "sort": {"date"}},
		},
		{
			name: "legislators inject state",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.ListLegislators(ctx, "tx", nil)
			},
			wantQuery: url.Values{"apikey": {testKey}, "state": {"tx"}},
		},
		{
			name: "committees inject state and fixed search",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.ListCommittees(ctx, "tx", Params{})
			},
			wantQuery: url.Values{"apikey": {testKey}, "state": {"tx"}, "q": {CommitteeSearchQuery}},
		},
		{
			name: "committees search can be overridden",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.ListCommittees(ctx, "tx", Params{"q": "Finance"})
			},
			wantQuery: url.Values{"apikey": {testKey}, "state": {"tx"}, "q": {"Finance"}},
		},
		{
			name: "bills do not send region",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.ListBills(ctx, "tx", Params{"q": "education"})
			},
			wantQuery: url.Values{"apikey": {testKey}, "q": {"education"}},
		},
		{
			name: "caller can override apikey",
			call: func(ctx context.Context, c *Client) (*collection.Collection, error) {
				return c.GetBill(ctx, "HB1", Params{"apikey": "other"})
			},
			wantQuery: url.Values{"apikey": {"other"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, server := newFakeAPI(t, http.StatusOK, `[]`)
			client := newTestClient(server.URL, testKey)

			_, err := tt.call(context.Background(), client)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, api.last().URL.Query())
		})
	}
}

func TestStatusCaptureIsInert(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusOK, `{"status": "ERROR", "data": []}`)
	client := newTestClient(server.URL, testKey)

	data, err := client.ListCommittees(context.Background(), "tx", nil)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, []string{"status", "data"}, data.Keys())

	require.NotNil(t, client.Status())
	assert.Equal(t, "ERROR", client.Status().String())
}

func TestStatusPersistsAcrossResponsesWithoutStatus(t *testing.T) {
	api, server := newFakeAPI(t, http.StatusOK, `{"status":"OK"}`)
	client := newTestClient(server.URL, testKey)

	_, err := client.GetBill(context.Background(), "HB1", nil)
	require.NoError(t, err)

	api.setBody(`[{"leg_id":"TXL000001"}]`)
	_, err = client.ListLegislators(context.Background(), "tx", nil)
	require.NoError(t, err)

	assert.Equal(t, "OK", client.Status().String())
}

func TestStatusCheckOptIn(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusOK, `{"status": "ERROR", "data": []}`)
	client := newTestClient(server.URL, testKey, WithStatusCheck(true))

	data, err := client.ListCommittees(context.Background(), "tx", nil)
	require.Error(t, err)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrAPIRequest)
	assert.Contains(t, err.Error(), "ERROR")
	assert.Equal(t, "ERROR", client.Status().String())
}

func TestHTTPFailurePropagation(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantText   string
		notFound   bool
		serverFail bool
	}{
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"detail":"Not found."}`,
			wantText: "404 Not Found",
			notFound: true,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       "upstream exploded",
			wantText:   "500 Internal Server Error",
			serverFail: true,
		},
	}

	for _, tt := range tests {
		for _, op := range allOperations() {
			t.Run(tt.name+"/"+op.name, func(t *testing.T) {
				_, server := newFakeAPI(t, tt.status, tt.body)
				client := newTestClient(server.URL, testKey)

				data, err := op.call(context.Background(), client)
				require.Error(t, err)
				assert.Nil(t, data)
				assert.ErrorIs(t, err, ErrAPIRequest)

				var reqErr *APIRequestError
				require.True(t, errors.As(err, &reqErr))
				assert.Equal(t, tt.status, reqErr.StatusCode)
				assert.Contains(t, reqErr.Message, tt.wantText)
				assert.Contains(t, reqErr.Message, tt.body)
				assert.Equal(t, tt.notFound, reqErr.IsNotFound())
				assert.Equal(t, tt.serverFail, reqErr.IsServerError())
				assert.NotContains(t, err.Error(), testKey)
			})
		}
	}
}

func TestUnauthorized(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusUnauthorized, `{"detail":"invalid key"}`)
	client := newTestClient(server.URL, "bad-key")

	_, err := client.ListLegislators(context.Background(), "tx", nil)
	var reqErr *APIRequestError
	require.True(t, errors.As(err, &reqErr))
	assert.True(t, reqErr.IsUnauthorized())
	assert.Contains(t, reqErr.URL, "apikey=REDACTED")
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := newTestClient(baseURL, testKey)
	_, err := client.GetBill(context.Background(), "HB1", nil)
	require.Error(t, err)

	var reqErr *APIRequestError
	require.True(t, errors.As(err, &reqErr))
	assert.True(t, reqErr.IsTransport())
	assert.Zero(t, reqErr.StatusCode)
	assert.NotEmpty(t, reqErr.Message)
	assert.NotContains(t, reqErr.Message, testKey)
}

func TestContextCancellation(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusOK, `[]`)
	client := newTestClient(server.URL, testKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListLegislators(ctx, "tx", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMalformedJSONFailsFast(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "html", body: "<html>maintenance</html>"},
		{name: "empty body", body: ""},
		{name: "truncated", body: `{"leg_id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server := newFakeAPI(t, http.StatusOK, tt.body)
			client := newTestClient(server.URL, testKey)

			data, err := client.ListLegislators(context.Background(), "tx", nil)
			require.Error(t, err)
			assert.Nil(t, data)

			var reqErr *APIRequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, http.StatusOK, reqErr.StatusCode)
			assert.Contains(t, reqErr.Message, "failed to decode response")
		})
	}
}

func TestResponseShaping(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusOK, `{"a": 1, "b": [1,2,3]}`)
	client := newTestClient(server.URL, testKey)

	data, err := client.GetBill(context.Background(), "HB1", nil)
	require.NoError(t, err)

	a, ok := data.Get("a")
	require.True(t, ok)
	n, ok := a.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(1), n)

	b, ok := data.Get("b")
	require.True(t, ok)
	assert.Equal(t, collection.Array, b.Kind())
	assert.Equal(t, []any{1, 2, 3}, b.Interface())

	out, err := data.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1, "b": [1,2,3]}`, string(out))

	again, err := collection.Parse(out)
	require.NoError(t, err)
	out2, err := again.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(out), string(out2))
}

func TestTopLevelArrayResponse(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusOK, `[{"leg_id":"TXL000001","full_name":"Jane Doe"},{"leg_id":"TXL000002","full_name":"John Roe"}]`)
	client := newTestClient(server.URL, testKey)

	data, err := client.ListLegislators(context.Background(), "tx", nil)
	require.NoError(t, err)
	assert.Equal(t, collection.Array, data.Kind())
	assert.Equal(t, 2, data.Len())
	assert.Nil(t, client.Status())

	first, ok := data.Index(0)
	require.True(t, ok)
	assert.Equal(t, []string{"leg_id", "full_name"}, first.Keys())
}

func TestRequestMetrics(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusOK, `[]`)
	client := newTestClient(server.URL, testKey)

	success := requestsTotal.WithLabelValues("legislators", outcomeSuccess)
	missing := requestsTotal.WithLabelValues("legislators", outcomeMissingKey)
	beforeSuccess := testutil.ToFloat64(success)
	beforeMissing := testutil.ToFloat64(missing)

	_, err := client.ListLegislators(context.Background(), "tx", nil)
	require.NoError(t, err)
	_, err = NewClient("", zerolog.Nop()).ListLegislators(context.Background(), "tx", nil)
	require.Error(t, err)

	assert.Equal(t, beforeSuccess+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeMissing+1, testutil.ToFloat64(missing))
}

func TestClone(t *testing.T) {
	_, server := newFakeAPI(t, http.StatusOK, `{"status":"OK"}`)
	client := newTestClient(server.URL, testKey)

	clone := client.Clone()
	clone.SetKey("other")
	assert.Equal(t, testKey, client.Key())

	_, err := clone.GetBill(context.Background(), "HB1", nil)
	require.NoError(t, err)
	assert.Nil(t, client.Status())
	assert.Equal(t, "OK", clone.Status().String())
	assert.Same(t, client.httpClient, clone.httpClient)
}

func TestTruncateKeepsRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "Not found", n: 512, want: "Not found"},
		{name: "ascii", in: "abcdef", n: 3, want: "abc..."},
		{name: "inside two byte rune", in: "Señor", n: 3, want: "Se..."},
		{name: "inside three byte rune", in: "a€b", n: 2, want: "a..."},
		{name: "on rune boundary", in: "a€b", n: 4, want: "a€..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestErrorBodyTruncatedOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", maxErrorBody-1) + "é and more"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(testKey, zerolog.Nop(), WithBaseURL(server.URL))
	_, err := client.ListLegislators(context.Background(), "tx", nil)

	var reqErr *APIRequestError
	require.True(t, errors.As(err, &reqErr))
	assert.True(t, utf8.ValidString(reqErr.Body))
	assert.Equal(t, strings.Repeat("a", maxErrorBody-1)+"...", reqErr.Body)
	assert.True(t, utf8.ValidString(reqErr.Message))
}
