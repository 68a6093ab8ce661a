// Package httpclient holds the shared HTTP transport used by the channel fetchers.
package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent is sent when no User-Agent header is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Response is the subset of a response the fetchers inspect.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client performs GET requests with per-call headers.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// Options configures a RestyClient.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// RestyClient implements Client with go-resty.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a client with the given overall request timeout and default headers.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return NewRestyClientWithOptions(Options{Timeout: timeout})
}

// NewRestyClientWithOptions creates a client from explicit options.
func NewRestyClientWithOptions(opts Options) *RestyClient {
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}

	c := resty.New().
		SetHeader("User-Agent", ua).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	for k, v := range opts.Headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		c.SetHeader(k, v)
	}

	return &RestyClient{client: c}
}

// Get issues a GET for url. Non-2xx statuses are not errors; callers check StatusCode.
func (c *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req := c.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return resp, nil
}
