package httpds

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paketetl/internal/config"
	"paketetl/internal/parser"
	jsonparser "paketetl/internal/parser/json"
	"paketetl/pkg/records"
)

var (
	// ErrUpstreamStatus is returned when the provider answers with a
	// non-2xx status after retries.
	ErrUpstreamStatus = errors.New("httpds: upstream status")
	// ErrShortResponse is returned for bodies below the configured minimum.
	ErrShortResponse = errors.New("httpds: upstream response too short")
)

// maxBody bounds how much of a provider response is read.
const maxBody = 32 << 20

// CatalogConfig configures a Catalog.
type CatalogConfig struct {
	BaseURL string
	// Method is GET (query in the URL) or POST (query as a form body).
	Method string
	// MinInboundChars rejects trimmed bodies shorter than this.
	MinInboundChars int
	// Parser decodes the body; nil means the JSON catalog parser with
	// its default list keys.
	Parser parser.Parser
}

// Catalog fetches one provider's product list.
type Catalog struct {
	client *Client
	cfg    CatalogConfig
}

// NewCatalog returns a Catalog using c for transport.
func NewCatalog(c *Client, cfg CatalogConfig) *Catalog {
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	cfg.Method = strings.ToUpper(cfg.Method)
	if cfg.Parser == nil {
		cfg.Parser = jsonparser.Parser{}
	}
	return &Catalog{client: c, cfg: cfg}
}

// ClientConfig maps module settings onto a client Config. max_retries counts
// total attempts, so one attempt is always made.
func ClientConfig(m config.Module) Config {
	retries := m.MaxRetries - 1
	if retries < 0 {
		retries = 0
	}
	return Config{
		Timeout:      time.Duration(m.Timeout) * time.Second,
		MaxRetries:   retries,
		FixedBackoff: time.Duration(m.SecondsBetweenRetries) * time.Second,
		RateLimit:    m.RateLimit,
	}
}

// CatalogFromModule builds the client and catalog for one module.
func CatalogFromModule(m config.Module, resp config.Response) *Catalog {
	return NewCatalog(NewClient(ClientConfig(m)), CatalogConfig{
		BaseURL:         m.BaseURL,
		Method:          m.Method,
		MinInboundChars: resp.MinInboundCharacters,
		Parser:          jsonparser.Parser{Keys: m.ListKeys},
	})
}

// Endpoint joins the base URL and endpoint path.
func (c *Catalog) Endpoint(endpoint string) string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	ep := strings.TrimLeft(endpoint, "/")
	if ep == "" {
		return base
	}
	return base + "/" + ep
}

// Fetch requests <base>/<endpoint> with query and decodes the record list.
func (c *Catalog) Fetch(ctx context.Context, endpoint string, query url.Values) ([]records.Record, error) {
	body, err := c.FetchRaw(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}
	recs, err := c.cfg.Parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httpds: decode %s: %w", c.Endpoint(endpoint), err)
	}
	return recs, nil
}

// FetchRaw returns the validated response body.
func (c *Catalog) FetchRaw(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	target := c.Endpoint(endpoint)

	var (
		resp *http.Response
		err  error
	)
	switch c.cfg.Method {
	case http.MethodPost:
		h := http.Header{}
		h.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err = c.client.Post(ctx, target, []byte(query.Encode()), h)
	default:
		u := target
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		resp, err = c.client.Get(ctx, u, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("httpds: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("httpds: read %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d from %s: %s", ErrUpstreamStatus, resp.StatusCode, target, snippet(body))
	}
	if n := len(bytes.TrimSpace(body)); n < c.cfg.MinInboundChars {
		return nil, fmt.Errorf("%w: %d < %d chars from %s", ErrShortResponse, n, c.cfg.MinInboundChars, target)
	}
	return body, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
