package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/agui/internal/config"
	"github.com/diogo/agui/internal/models"
)

// DefaultTimeout bounds a single query at the transport level
const DefaultTimeout = 300 * time.Second

// HTTPDoer is the subset of tls_client.HttpClient the query client needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

// QueryClientInterface is what the chat controller and commands depend on
type QueryClientInterface interface {
	Query(ctx context.Context, text string) (*models.QueryResult, error)
	Endpoint() string
	Close()
	IsClosed() bool
}

// Client posts user messages to the query endpoint
type Client struct {
	httpClient HTTPDoer
	endpoint   string
	timeout    time.Duration
	userAgent  string
	mu         sync.RWMutex
	closed     bool
}

var _ QueryClientInterface = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithEndpoint sets the URL queries are posted to
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithTimeout sets the transport deadline for a single query
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the TLS client, mainly for tests
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithUserAgent sets the User-Agent header sent with each query
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a new query Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		endpoint:  models.DefaultEndpoint,
		timeout:   DefaultTimeout,
		userAgent: "agui",
	}

	for _, opt := range opts {
		opt(client)
	}

	if err := config.ValidateEndpoint(client.endpoint); err != nil {
		return nil, err
	}

	if client.httpClient == nil {
		seconds := int(client.timeout / time.Second)
		if seconds <= 0 {
			seconds = int(DefaultTimeout / time.Second)
		}

		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(seconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// NewClientFromConfig creates a Client using the endpoint and timeout in cfg
func NewClientFromConfig(cfg config.Config, opts ...ClientOption) (*Client, error) {
	base := []ClientOption{
		WithEndpoint(cfg.Endpoint),
		WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
	}
	return NewClient(append(base, opts...)...)
}

// Endpoint returns the URL queries are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Timeout returns the transport deadline
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Close releases idle connections. Further queries fail.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
