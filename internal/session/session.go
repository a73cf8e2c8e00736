// Package session implements the HTTP transport used against the captive
// portal: a pooled, proxy-less client with retries and a cookie jar that
// lives for exactly one attempt sequence.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
)

// Fixed browser-like request headers.
const (
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	Accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	AcceptLanguage = "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7"
)

// MaxBodySize caps how much of a response body is read.
const MaxBodySize = 4 << 20

// ErrBodyTooLarge is returned when a response exceeds MaxBodySize.
var ErrBodyTooLarge = errors.New("response body too large")

// Options configures a Session.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	// MaxAttempts is the total number of tries per request, including the first.
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	// Logger receives retry diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the transport settings used against the portal.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 4 * time.Second,
		ReadTimeout:    8 * time.Second,
		MaxAttempts:    5,
		BackoffBase:    400 * time.Millisecond,
		BackoffMax:     8 * time.Second,
	}
}

// Page is a fetched response with its body decoded to UTF-8.
type Page struct {
	StatusCode int
	// URL is the final URL after redirects.
	URL    string
	Body   string
	Header http.Header
}

// OK reports whether the status is 2xx or 3xx.
func (p *Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 400
}

// Session is a cookie-keeping HTTP client. It is not meant to be shared
// between concurrent attempt sequences.
type Session struct {
	client *retryablehttp.Client
	jar    http.CookieJar
}

// New creates a Session with a fresh cookie jar.
func New(opts Options) (*Session, error) {
	defaults := DefaultOptions()
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaults.ConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaults.ReadTimeout
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = defaults.BackoffBase
	}
	if opts.BackoffMax < opts.BackoffBase {
		opts.BackoffMax = opts.BackoffBase
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := cleanhttp.DefaultPooledTransport()
	transport.Proxy = nil
	transport.DialContext = (&net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = opts.ConnectTimeout
	transport.ResponseHeaderTimeout = opts.ReadTimeout

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   opts.ConnectTimeout + opts.ReadTimeout,
	}
	client.Logger = opts.Logger
	client.RetryMax = opts.MaxAttempts - 1
	client.RetryWaitMin = opts.BackoffBase
	client.RetryWaitMax = opts.BackoffMax
	client.CheckRetry = CheckRetry
	client.Backoff = ExponentialBackoff
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Session{client: client, jar: jar}, nil
}

// Get fetches rawURL. Extra headers are added to the fixed set.
func (s *Session) Get(ctx context.Context, rawURL string, header http.Header) (*Page, error) {
	return s.do(ctx, http.MethodGet, rawURL, nil, header)
}

// PostForm submits form as application/x-www-form-urlencoded.
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values, header http.Header) (*Page, error) {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(ctx, http.MethodPost, rawURL, []byte(form.Encode()), h)
}

// cookies returns the cookies the jar would send to rawURL.
func (s *Session) cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return s.jar.Cookies(u)
}

// Close releases pooled connections.
func (s *Session) Close() {
	s.client.HTTPClient.CloseIdleConnections()
}

func (s *Session) do(ctx context.Context, method, rawURL string, body []byte, header http.Header) (*Page, error) {
	var rawBody interface{}
	if body != nil {
		rawBody = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", Accept)
	req.Header.Set("Accept-Language", AcceptLanguage)
	for k, vs := range header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	text, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	slog.Debug("Portal request completed", "method", method, "url", rawURL, "status", resp.StatusCode, "final_url", finalURL)

	return &Page{
		StatusCode: resp.StatusCode,
		URL:        finalURL,
		Body:       text,
		Header:     resp.Header,
	}, nil
}

func readBody(resp *http.Response) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(raw) > MaxBodySize {
		return "", ErrBodyTooLarge
	}

	r, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		// Unknown charset label: keep the raw bytes.
		return string(raw), nil
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	return string(decoded), nil
}

// CheckRetry retries transient transport failures and the status codes
// 429, 500, 502, 503 and 504. A cancelled context is never retried.
func CheckRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

// ExponentialBackoff waits min·2^attempt, capped at max. A Retry-After header
// on 429 and 503 responses takes precedence, still capped at max.
func ExponentialBackoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
		if strings.TrimSpace(resp.Header.Get("Retry-After")) != "" {
			wait := retryablehttp.DefaultBackoff(min, max, attemptNum, resp)
			if wait > max {
				return max
			}
			return wait
		}
	}

	wait := float64(min) * math.Pow(2, float64(attemptNum))
	if wait > float64(max) {
		return max
	}
	return time.Duration(wait)
}
