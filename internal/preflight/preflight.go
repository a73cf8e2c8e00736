// Package preflight performs the best-effort connectivity check run before a
// login sequence: DNS for the portal host, one GET of the login page, and an
// advisory look at the connected WiFi network name.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/shini4i/gsbwifi/internal/session"
)

var (
	// ErrDNS is wrapped when the portal host does not resolve.
	ErrDNS = errors.New("portal host did not resolve")
	// ErrPortalUnreachable is wrapped when the login page cannot be fetched.
	ErrPortalUnreachable = errors.New("portal unreachable")
)

// Error is a blocking preflight failure with a user-facing reason.
type Error struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Reason
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Resolver resolves host names. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Fetcher issues GET requests. *session.Session satisfies it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*session.Page, error)
}

// Report describes a passed check.
type Report struct {
	SSID        string
	SSIDMatches bool
	DNSResolved bool
	// Warning is a non-blocking note, e.g. an unexpected network name.
	Warning string
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithResolver replaces the DNS resolver.
func WithResolver(r Resolver) Option {
	return func(a *Advisor) {
		a.resolver = r
	}
}

// WithDetector replaces the SSID detector.
func WithDetector(d SSIDDetector) Option {
	return func(a *Advisor) {
		a.detector = d
	}
}

// Advisor runs the preflight check.
type Advisor struct {
	loginPageURL string
	hints        []string
	resolver     Resolver
	detector     SSIDDetector
}

// NewAdvisor creates an Advisor for the given login page. hints are
// case-insensitive substrings identifying the expected network name.
func NewAdvisor(loginPageURL string, hints []string, opts ...Option) *Advisor {
	a := &Advisor{
		loginPageURL: loginPageURL,
		hints:        hints,
		resolver:     net.DefaultResolver,
		detector:     DefaultDetector(NewExecRunner()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Check runs the preflight. A returned *Error means the login sequence should
// not start. The network name never blocks on its own.
func (a *Advisor) Check(ctx context.Context, fetcher Fetcher) (Report, error) {
	var report Report

	ssid, err := a.detector.SSID(ctx)
	if err != nil {
		slog.Debug("SSID detection failed", "error", err)
	}
	report.SSID = strings.TrimSpace(ssid)
	report.SSIDMatches = report.SSID != "" && a.matchesHint(report.SSID)

	ssidNote := ""
	if report.SSID != "" {
		ssidNote = fmt.Sprintf(" (SSID: %s)", report.SSID)
	}

	host, err := hostOf(a.loginPageURL)
	if err != nil {
		return report, &Error{Reason: "Giriş sayfası adresi geçersiz.", Err: err}
	}

	if _, err := a.resolver.LookupHost(ctx, host); err != nil {
		slog.Info("Portal DNS lookup failed", "host", host, "ssid", report.SSID, "error", err)
		if !report.SSIDMatches {
			return report, &Error{
				Reason: "Portal DNS çözümlenemedi. GSB WiFi ağına bağlı olmayabilirsin" + ssidNote,
				Err:    fmt.Errorf("%w: %w", ErrDNS, err),
			}
		}
	} else {
		report.DNSResolved = true
	}

	page, err := fetcher.Get(ctx, a.loginPageURL, nil)
	if err != nil {
		return report, &Error{
			Reason: fmt.Sprintf("Portal erişilemiyor. GSB WiFi'a bağlı olmayabilirsin%s. (%v)", ssidNote, err),
			Err:    fmt.Errorf("%w: %w", ErrPortalUnreachable, err),
		}
	}
	if !page.OK() {
		return report, &Error{
			Reason: fmt.Sprintf("Portal erişimi başarısız (HTTP %d).", page.StatusCode),
			Err:    fmt.Errorf("%w: status %d", ErrPortalUnreachable, page.StatusCode),
		}
	}

	if report.SSID != "" && !report.SSIDMatches {
		report.Warning = fmt.Sprintf("Bağlı ağ: %s (GSB WiFi olmayabilir)", report.SSID)
	}
	return report, nil
}

func (a *Advisor) matchesHint(ssid string) bool {
	lower := strings.ToLower(ssid)
	for _, h := range a.hints {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" && strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid login page URL: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("login page URL %q has no host", rawURL)
	}
	return u.Hostname(), nil
}
