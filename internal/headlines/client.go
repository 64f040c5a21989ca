// Package headlines calls the upstream article-search API, either directly
// with a local key or through the reader's proxy.
package headlines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"news-reader/internal/article"
)

// Endpoint is an upstream API path segment.
type Endpoint string

const (
	TopHeadlines Endpoint = "top-headlines"
	Everything   Endpoint = "everything"
)

// Valid reports whether e is a known endpoint.
func (e Endpoint) Valid() bool {
	return e == TopHeadlines || e == Everything
}

// ErrNoCredential is returned by direct clients that have no API key.
var ErrNoCredential = errors.New("news API key not configured")

// Params are the query parameters of one request.
type Params map[string]string

// FetchError carries the upstream status and message of a failed request.
type FetchError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.Status != 0:
		return fmt.Sprintf("upstream returned %d", e.Status)
	default:
		return "API error"
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client issues single best-effort requests. There is no retry, cache or
// client-side timeout.
type Client struct {
	baseURL string
	apiKey  string
	proxied bool
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewDirect creates a client that calls baseURL/<endpoint> and appends apiKey.
func NewDirect(baseURL, apiKey string, opts ...Option) *Client {
	return newClient(&Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}, opts)
}

// NewProxied creates a client that calls proxyURL with an endpoint parameter.
func NewProxied(proxyURL string, opts ...Option) *Client {
	return newClient(&Client{baseURL: proxyURL, proxied: true}, opts)
}

func newClient(c *Client, opts []Option) *Client {
	c.http = &http.Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Proxied reports whether requests go through the proxy.
func (c *Client) Proxied() bool {
	return c.proxied
}

// Configured reports whether the client can issue requests at all.
func (c *Client) Configured() bool {
	return c.proxied || c.apiKey != ""
}

// Fetch requests endpoint with params.
func (c *Client) Fetch(ctx context.Context, endpoint Endpoint, params Params) (*article.Response, error) {
	if !endpoint.Valid() {
		return nil, fmt.Errorf("unknown endpoint %q", endpoint)
	}
	if !c.Configured() {
		return nil, &FetchError{Err: ErrNoCredential}
	}

	reqURL, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Err: redact(err, c.apiKey)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	var out article.Response
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := &FetchError{Status: resp.StatusCode}
		if decodeErr == nil {
			fe.Code, fe.Message = out.Code, out.Message
		}
		if fe.Message == "" {
			fe.Message = upstreamError(body)
		}
		return nil, fe
	}
	if decodeErr != nil {
		return nil, &FetchError{Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", decodeErr)}
	}
	if !out.OK() {
		msg := out.Message
		if msg == "" {
			msg = "API error"
		}
		return nil, &FetchError{Status: resp.StatusCode, Code: out.Code, Message: msg}
	}
	if out.Articles == nil {
		out.Articles = []article.Article{}
	}
	return &out, nil
}

func (c *Client) buildURL(endpoint Endpoint, params Params) (string, error) {
	base := c.baseURL
	if !c.proxied {
		base += "/" + string(endpoint)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}

	q := u.Query()
	if c.proxied {
		q.Set("endpoint", string(endpoint))
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if params[k] == "" || k == "endpoint" || k == "apiKey" {
			continue
		}
		q.Set(k, params[k])
	}
	if !c.proxied {
		q.Set("apiKey", c.apiKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// upstreamError extracts the proxy's {"error": ...} field, if any.
func upstreamError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Error
	}
	return ""
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// redact strips the key from transport errors, which embed the request URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), key, "REDACTED"), err: err}
}
