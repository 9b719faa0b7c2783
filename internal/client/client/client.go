package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/client/credentials"
	"github.com/dmitrijs2005/babeledit/internal/logging"
	"github.com/google/uuid"
)

// Defaults for the request pipeline.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultRetries        = 2
	DefaultRetryDelay     = time.Second
	DefaultRefreshPath    = "/auth/refresh"
)

// Client is the transport-agnostic contract the services depend on.
type Client interface {
	Do(ctx context.Context, endpoint string, req Request, out any) error
}

// HTTPClient issues authenticated JSON requests against the storefront API.
//
// Every logical request goes through the same pipeline: attach the bearer
// token from the credential store, retry transport failures with a linear
// backoff, and on 401/403 either report a suspended account or refresh the
// session once (single-flight across concurrent callers) and resend.
//
// HTTPClient is safe for concurrent use.
type HTTPClient struct {
	baseURL        *url.URL
	http           *http.Client
	store          credentials.Store
	log            logging.Logger
	requestTimeout time.Duration
	retries        int
	retryDelay     time.Duration
	refreshPath    string
	newRequestID   func() string

	refresher *refresher
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. A client without a
// cookie jar gets one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithRequestTimeout sets the ceiling of a single physical attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithRetries sets how many extra attempts a transport failure gets.
func WithRetries(n int) Option {
	return func(c *HTTPClient) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithRetryDelay sets the backoff unit: the n-th retry waits n*d.
func WithRetryDelay(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

func WithRefreshPath(p string) Option {
	return func(c *HTTPClient) {
		if p != "" {
			c.refreshPath = p
		}
	}
}

func withRequestIDs(fn func() string) Option {
	return func(c *HTTPClient) { c.newRequestID = fn }
}

// jarProvider is implemented by stores that keep the session in a cookie jar.
type jarProvider interface {
	Jar() http.CookieJar
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, store credentials.Store, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}
	if store == nil {
		return nil, fmt.Errorf("credential store is required")
	}

	c := &HTTPClient{
		baseURL:        u,
		store:          store,
		log:            logging.NewNopLogger(),
		requestTimeout: DefaultRequestTimeout,
		retries:        DefaultRetries,
		retryDelay:     DefaultRetryDelay,
		refreshPath:    DefaultRefreshPath,
		newRequestID:   uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}

	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.http.Jar == nil {
		if jp, ok := store.(jarProvider); ok {
			c.http.Jar = jp.Jar()
		} else {
			jar, err := cookiejar.New(nil)
			if err != nil {
				return nil, err
			}
			c.http.Jar = jar
		}
	}

	c.refresher = newRefresher(c.refreshSession)
	return c, nil
}

// BaseURL returns the API root.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL.String()
}

// resolve turns endpoint into an absolute URL. Absolute endpoints are kept.
func (c *HTTPClient) resolve(endpoint string, query url.Values) (string, error) {
	var u *url.URL
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
		}
		u = parsed
	} else {
		rel, err := url.Parse(endpoint)
		if err != nil {
			return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
		}
		u = c.baseURL.JoinPath(rel.Path)
		u.RawQuery = rel.RawQuery
	}

	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
