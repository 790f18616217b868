// Package fetch retrieves pages over HTTP(S) or from the local filesystem.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies moodscrape to the remote site.
	DefaultUserAgent = "moodscrape/1.0 (article snapshot tool)"

	// MaxBodySize caps a response body. Sitemaps may be 50MB uncompressed.
	MaxBodySize = 64 << 20
)

// ErrBodyTooLarge is returned when a response exceeds the body size cap.
var ErrBodyTooLarge = errors.New("response too large")

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.Code, http.StatusText(e.Code))
}

// Page is a fetched document.
type Page struct {
	// URL is the final location of the page. Local files get a file:// URL.
	URL         *url.URL
	ContentType string
	Body        []byte
}

// Document parses the page body as HTML.
func (p *Page) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Url = p.URL
	return doc, nil
}

// Client fetches pages. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	userAgent string
	maxBody   int64
}

// NewClient creates a client. Zero values select DefaultTimeout and
// DefaultUserAgent.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBody:   MaxBodySize,
	}
}

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Get fetches location, which is an http(s) URL, a file:// URL or a local
// path.
func (c *Client) Get(ctx context.Context, location string) (*Page, error) {
	if IsRemote(location) {
		return c.getRemote(ctx, location)
	}
	return getLocal(location)
}

func (c *Client) getRemote(ctx context.Context, location string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: location, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, location, c.maxBody)
	}

	return &Page{
		URL:         resp.Request.URL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func getLocal(location string) (*Page, error) {
	path := strings.TrimPrefix(location, "file://")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	body, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &Page{
		URL:  &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)},
		Body: body,
	}, nil
}
