// Package fetch wraps a colly collector into a small synchronous HTTP
// client used for listing pages, robots.txt, and image downloads. Requests
// carry a browser-like header set with a rotating user agent so catalog
// pages render the same markup they serve to a regular visitor.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// Options controls client behaviour.
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int
}

// Client issues one-shot GET requests through a shared colly backend.
type Client struct {
	base *colly.Collector
}

// New constructs a client. The zero Options value gets a 30 second timeout
// and no explicit body cap.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	base := colly.NewCollector(colly.AllowURLRevisit())
	base.IgnoreRobotsTxt = true // robots handling is advisory and lives in the robots package
	base.SetRequestTimeout(opts.Timeout)
	if opts.MaxBodyBytes > 0 {
		base.MaxBodySize = opts.MaxBodyBytes
	}
	base.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Client{base: base}
}

// WithTransport replaces the underlying HTTP transport. Tests use this to
// install an httpmock transport.
func (c *Client) WithTransport(rt http.RoundTripper) {
	c.base.WithTransport(rt)
}

// Document fetches an HTML page and parses it into a goquery document.
func (c *Client) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, _, err := c.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", pageURL, err)
	}
	return doc, nil
}

// Get fetches a URL and returns the response body and content type.
func (c *Client) Get(ctx context.Context, target string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	// Handlers are per-request, so each call works on a fresh collector
	// sharing the base transport and settings.
	col := c.base.Clone()
	col.OnRequest(setBrowserHeaders)

	var (
		body        []byte
		contentType string
		statusCode  int
	)
	col.OnResponse(func(r *colly.Response) {
		body = r.Body
		contentType = r.Headers.Get("Content-Type")
	})
	col.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			statusCode = r.StatusCode
		}
	})

	if err := col.Visit(target); err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", target, Classify(err, statusCode))
	}
	col.Wait()

	if body == nil {
		return nil, "", fmt.Errorf("fetch %s: empty response", target)
	}
	return body, contentType, nil
}

func setBrowserHeaders(r *colly.Request) {
	r.Headers.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	r.Headers.Set("Accept-Language", "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7")
	r.Headers.Set("DNT", "1")
	r.Headers.Set("Upgrade-Insecure-Requests", "1")
	r.Headers.Set("Referer", r.URL.Scheme+"://"+r.URL.Host+"/")
}
