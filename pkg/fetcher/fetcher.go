package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/caching"
	"golang.org/x/time/rate"
)

// Options configures a Fetcher. Zero values fall back to the defaults in models.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// RateLimit is the sustained number of requests per second; <= 0 disables limiting.
	RateLimit float64
	Cache     *caching.Cache
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	cache     *caching.Cache
}

func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = models.DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = models.DefaultUserAgent
	}

	f := &Fetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		cache:     opts.Cache,
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return f
}

// GetCachedHtml returns the parsed page from the response cache, fetching it on a miss.
func (f *Fetcher) GetCachedHtml(ctx context.Context, url string) (*goquery.Document, error) {
	if body, ok := f.cache.Get(url); ok {
		return ParseHtml(url, body)
	}
	return f.RefreshHtml(ctx, url)
}

// RefreshHtml always fetches url and stores the fresh body in the cache.
func (f *Fetcher) RefreshHtml(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := ParseHtml(url, body)
	if err != nil {
		return nil, err
	}
	// A failed cache write only costs a refetch later.
	_ = f.cache.Set(url, body)
	return doc, nil
}

// GetBytes returns the raw response body of a successful GET, page or image.
func (f *Fetcher) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &models.NetworkError{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &models.NetworkError{URL: url, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &models.NetworkError{URL: url, Err: fmt.Errorf("failed to make HTTP request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.NetworkError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return bodyBytes, nil
}

// ParseHtml parses an HTML body. source names the document in errors.
func ParseHtml(source string, body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &models.ParseError{What: source, Err: err}
	}
	return doc, nil
}
