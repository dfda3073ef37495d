package jobposting

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/resume-tailor/internal/logger"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; resume-tailor/1.0)"
	// DefaultRate is requests per second across all job pages.
	DefaultRate  = 1.0
	maxPageBytes = 5 << 20
)

// FetchError describes a failed page download.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// FetchOptions configure a Fetcher. Zero values select defaults.
type FetchOptions struct {
	Timeout       time.Duration
	UserAgent     string
	RatePerSecond float64
}

// Fetcher downloads job posting pages, spacing requests with a shared rate limiter.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewFetcher(opts FetchOptions, log *zap.Logger) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	perSecond := opts.RatePerSecond
	if perSecond <= 0 {
		perSecond = DefaultRate
	}

	return &Fetcher{
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:     logger.OrNop(log),
	}
}

// Fetch returns the body of a page. Non-200 answers are reported as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &FetchError{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: rawURL, Message: "waiting for rate limiter", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", "gzip")

	f.logger.Debug("fetching job posting", zap.String(logger.FieldJobURL, rawURL))

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Message: "invalid gzip body", Cause: err}
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxPageBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	return body, nil
}
