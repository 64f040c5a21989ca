package proxy

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultEndpoint is used when the request names none.
const DefaultEndpoint = "top-headlines"

var endpointPattern = regexp.MustCompile(`^[a-z][a-z-]*(/[a-z][a-z-]*)*$`)

// Options configures a NewsService.
type Options struct {
	// BaseURL is the upstream API root, e.g. https://newsapi.org/v2
	BaseURL string

	// AllowedParams limits the forwarded query parameters. Empty forwards all.
	AllowedParams []string

	// APIKey resolves the server-held credential on every request.
	APIKey func() string

	// KeyHint is returned to clients when the credential is missing. It must
	// not contain the credential.
	KeyHint string

	// Client is the upstream transport. Defaults to a plain http.Client.
	Client *http.Client
}

// NewsService forwards article queries to the upstream API, injecting the
// server-held credential.
type NewsService struct {
	baseURL string
	allowed map[string]bool
	apiKey  func() string
	keyHint string
	client  *http.Client
}

// NewNewsService creates a news proxy service.
func NewNewsService(opts Options) *NewsService {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	apiKey := opts.APIKey
	if apiKey == nil {
		apiKey = func() string { return "" }
	}

	var allowed map[string]bool
	if len(opts.AllowedParams) > 0 {
		allowed = make(map[string]bool, len(opts.AllowedParams))
		for _, p := range opts.AllowedParams {
			allowed[p] = true
		}
	}

	return &NewsService{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		allowed: allowed,
		apiKey:  apiKey,
		keyHint: opts.KeyHint,
		client:  client,
	}
}

// CORSHeaders sets the permissive cross-origin headers on every response,
// including errors and preflight.
func CORSHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		c.Next()
	}
}

// GetNews handles /api/news.
func (ns *NewsService) GetNews(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
		return
	case http.MethodGet:
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	key := ns.apiKey()
	if key == "" {
		log.Printf("API key missing: %s", ns.keyHint)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "API key not configured",
			"hint":  ns.keyHint,
		})
		return
	}

	query := c.Request.URL.Query()
	endpoint := query.Get("endpoint")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !endpointPattern.MatchString(endpoint) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endpoint"})
		return
	}

	upstreamURL, err := ns.upstreamURL(endpoint, query, key)
	if err != nil {
		ns.fail(c, err, key)
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, upstreamURL, nil)
	if err != nil {
		ns.fail(c, err, key)
		return
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "news-reader-proxy/1.0")

	resp, err := ns.client.Do(req)
	if err != nil {
		ns.fail(c, err, key)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ns.fail(c, err, key)
		return
	}
	if !json.Valid(body) {
		ns.fail(c, errNonJSON, key)
		return
	}

	// relay status and body verbatim, success or not
	c.Data(resp.StatusCode, "application/json; charset=utf-8", body)
}

// upstreamURL joins base, endpoint, the pass-through parameters and the key.
func (ns *NewsService) upstreamURL(endpoint string, query url.Values, key string) (string, error) {
	u, err := url.Parse(ns.baseURL + "/" + endpoint)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := url.Values{}
	for _, k := range keys {
		// the server credential cannot be overridden by the caller
		if k == "endpoint" || k == "apiKey" {
			continue
		}
		if ns.allowed != nil && !ns.allowed[k] {
			continue
		}
		for _, v := range query[k] {
			out.Add(k, v)
		}
	}
	out.Add("apiKey", key)

	u.RawQuery = out.Encode()
	return u.String(), nil
}

func (ns *NewsService) fail(c *gin.Context, err error, key string) {
	msg := strings.ReplaceAll(err.Error(), key, "REDACTED")
	log.Printf("Error fetching from upstream: %s", msg)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to fetch news",
		"message": msg,
	})
}

type proxyError string

func (e proxyError) Error() string { return string(e) }

const errNonJSON = proxyError("upstream returned a non-JSON body")
