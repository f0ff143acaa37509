package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnexpectedStatus is returned for any non-200 upstream response
var ErrUnexpectedStatus = errors.New("unexpected status code")

// maxBodySize limits how much of a response body is read
const maxBodySize = 10 << 20

// Response is a fully read upstream response
type Response struct {
	ContentType string
	Body        []byte
}

// HTTPClient performs single-attempt upstream requests with a fixed timeout
type HTTPClient struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// NewHTTPClient creates a new client. Connections are not reused between requests.
func NewHTTPClient(timeout time.Duration, userAgent string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment, DisableKeepAlives: true},
		},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// PostForm sends form-encoded data as an ajax request and returns the response body
func (c *HTTPClient) PostForm(ctx context.Context, urlStr string, form url.Values) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, c.userAgent)
	addXHRHeaders(req)

	return c.do(req)
}

// Get fetches a page and returns the response body
func (c *HTTPClient) Get(ctx context.Context, urlStr string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, c.userAgent)
	addPageHeaders(req)

	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (*Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("%w %d for %s", ErrUnexpectedStatus, resp.StatusCode, req.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", req.URL, err)
	}

	return &Response{ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}
