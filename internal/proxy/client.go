// Package proxy routes outbound storefront requests through a scraping proxy
// that rotates exit IPs. The proxy accepts the target URL and API key as query
// parameters, forwards caller headers verbatim when custom_headers is set, and
// reports upstream Set-Cookie activity back in a single synthetic header.
package proxy

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultEndpoint is the proxy API entry point.
	DefaultEndpoint = "https://api.zenrows.com/v1/"

	// cookieDeltaHeader carries the merged upstream cookies for the call.
	cookieDeltaHeader = "Zr-Cookies"

	defaultTimeout = 30 * time.Second
)

// Config holds proxy client configuration
type Config struct {
	APIKey   string
	Endpoint string        // proxy API endpoint; DefaultEndpoint when empty
	Timeout  time.Duration // per-call timeout; 30s when zero
}

// Client is the HTTP client every storefront handler uses for upstream calls.
// It performs no retries; retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// Request describes one upstream call to make through the proxy.
type Request struct {
	Method    string
	TargetURL string
	Headers   map[string]string
	Body      []byte
	SessionID string // pins the proxy exit IP across a multi-step handshake
}

// Response is the upstream response as relayed by the proxy.
type Response struct {
	StatusCode  int
	Header      http.Header
	Body        []byte
	CookieDelta map[string]string
}

// NewClient creates a proxy client
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
	}
}

// Do performs one request through the proxy. Transport failures surface as
// *NetworkError, non-2xx upstream statuses as *UpstreamStatusError (with the
// body attached, since some storefronts put diagnostics in error responses).
// The context governs cancellation and may shorten the client timeout.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	params := url.Values{}
	params.Set("url", r.TargetURL)
	params.Set("apikey", c.apiKey)
	params.Set("custom_headers", "true")
	if r.SessionID != "" {
		params.Set("session_id", r.SessionID)
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.endpoint+"?"+params.Encode(), body)
	if err != nil {
		return nil, &NetworkError{URL: r.TargetURL, Err: err}
	}
	for name, value := range r.Headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: r.TargetURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: r.TargetURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamStatusError{Code: resp.StatusCode, URL: r.TargetURL, Body: data}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		Body:        data,
		CookieDelta: ParseCookieHeader(resp.Header.Get(cookieDeltaHeader)),
	}, nil
}
