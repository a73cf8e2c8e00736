// Package portal drives login and logout against the captive portal. Client
// performs single attempts; Service wraps them with credential lookup,
// preflight and the retry controller.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shini4i/gsbwifi/internal/config"
	"github.com/shini4i/gsbwifi/internal/credentials"
	"github.com/shini4i/gsbwifi/internal/page"
	"github.com/shini4i/gsbwifi/internal/session"
)

const (
	maxQuotaCandidates  = 3
	maxLogoutCandidates = 10
)

// logoutHints in a final URL show that the session ended.
var logoutHints = []string{"logout=1", "cikisson", "cikis", "login.html"}

// Endpoints are the portal URLs. AuthURL, LogoutURL and QuotaURL are optional.
type Endpoints struct {
	PortalURL    string
	LoginPageURL string
	AuthURL      string
	LogoutURL    string
	QuotaURL     string
}

// EndpointsFromConfig copies the endpoint settings of cfg.
func EndpointsFromConfig(cfg *config.Config) Endpoints {
	return Endpoints{
		PortalURL:    cfg.PortalURL,
		LoginPageURL: cfg.LoginPageURL,
		AuthURL:      cfg.AuthURL,
		LogoutURL:    cfg.LogoutURL,
		QuotaURL:     cfg.QuotaURL,
	}
}

// Result is the outcome shown to the user.
type Result struct {
	Success  bool
	Headline string
	Details  string
}

// Status describes the session as seen from the portal root.
type Status struct {
	LoggedIn bool
	Greeting string
	Headline string
	Details  string
	URL      string
	// Fields are the quota rows of the page the headline came from.
	Fields page.QuotaFields
}

// Doer is the transport used by Client. *session.Session satisfies it.
type Doer interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*session.Page, error)
	PostForm(ctx context.Context, rawURL string, form url.Values, header http.Header) (*session.Page, error)
}

// Client performs single login, logout and status attempts over one session.
type Client struct {
	http      Doer
	endpoints Endpoints
	now       func() time.Time
}

// NewClient creates a Client.
func NewClient(doer Doer, endpoints Endpoints) *Client {
	return &Client{http: doer, endpoints: endpoints, now: time.Now}
}

// LoginOnce runs one login attempt. On failure the error is an *AttemptError.
func (c *Client) LoginOnce(ctx context.Context, creds credentials.Credentials) (Result, error) {
	start := c.now()

	loginPage, err := c.http.Get(ctx, c.endpoints.LoginPageURL, nil)
	if err != nil {
		return Result{}, newAttemptError(ErrNetwork, fmt.Sprintf(MsgLoginPageError, err), err)
	}
	if !loginPage.OK() {
		return Result{}, newAttemptError(ErrNetwork, fmt.Sprintf(MsgLoginPageStatus, loginPage.StatusCode), nil)
	}

	if !page.LooksLikeLoginPage(loginPage.Body, loginPage.URL) {
		slog.Info("Session already authenticated", "url", loginPage.URL)
		headline, details := page.QuotaHeadlineAndDetails(loginPage.Body)
		return Result{
			Success:  true,
			Headline: headline,
			Details:  joinLines(MsgAlreadyLoggedIn, details),
		}, nil
	}

	authURL := page.ResolveAuthURL(loginPage.Body, c.endpoints.LoginPageURL, c.endpoints.AuthURL)
	fields := page.ExtractHiddenFields(loginPage.Body).WithCredentials(creds.Username, creds.Password)
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}

	slog.Debug("Submitting login form", "url", authURL, "fields", len(form))
	resp, err := c.http.PostForm(ctx, authURL, form, http.Header{"Referer": {c.endpoints.LoginPageURL}})
	elapsed := c.now().Sub(start)
	if err != nil {
		return Result{}, newAttemptError(ErrNetwork, fmt.Sprintf(MsgLoginRequestError, err), err)
	}
	if !resp.OK() {
		return Result{}, newAttemptError(ErrNetwork, fmt.Sprintf(MsgLoginRequestStatus, resp.StatusCode), nil)
	}

	if page.LooksLikeLoginPage(resp.Body, resp.URL) {
		return Result{}, newAttemptError(ErrPortalRejected, page.FailureReason(resp.Body), nil)
	}

	headline, details := page.QuotaHeadlineAndDetails(resp.Body)
	source := resp

	check, err := c.http.Get(ctx, c.endpoints.PortalURL, nil)
	if err != nil {
		slog.Debug("Login confirmation request failed", "url", c.endpoints.PortalURL, "error", err)
	} else {
		if page.LooksLikeLoginPage(check.Body, check.URL) {
			slog.Info("Portal root still shows the login form after submit", "url", check.URL)
			return Result{}, newAttemptError(ErrPortalRejected, page.FailureReason(resp.Body), nil)
		}
		if details == "" {
			headline, details = page.QuotaHeadlineAndDetails(check.Body)
		}
		source = check
	}

	if details == "" {
		if h, d, _, ok := c.lookupQuota(ctx, source); ok {
			headline, details = h, d
		}
	}

	return Result{
		Success:  true,
		Headline: headline,
		Details:  joinLines(fmt.Sprintf(MsgLoginSucceeded, elapsed.Seconds()), details),
	}, nil
}

// lookupQuota visits the configured quota page, then up to three quota links
// discovered on from, and returns the first page with quota information.
func (c *Client) lookupQuota(ctx context.Context, from *session.Page) (headline, details string, found *session.Page, ok bool) {
	var candidates []string
	if c.endpoints.QuotaURL != "" {
		candidates = append(candidates, c.endpoints.QuotaURL)
	}
	discovered := 0
	for _, u := range page.DiscoverCandidateURLs(from.Body, from.URL, page.QuotaKeywords) {
		if discovered == maxQuotaCandidates {
			break
		}
		if u == c.endpoints.QuotaURL {
			continue
		}
		candidates = append(candidates, u)
		discovered++
	}

	for _, candidate := range candidates {
		p, err := c.http.Get(ctx, candidate, nil)
		if err != nil {
			slog.Debug("Quota candidate failed", "url", candidate, "error", err)
			continue
		}
		if !p.OK() {
			continue
		}
		if h, d := page.QuotaHeadlineAndDetails(p.Body); d != "" {
			slog.Debug("Quota information found", "url", candidate)
			return h, d, p, true
		}
	}
	slog.Debug("Quota information not found", "error", ErrParseAmbiguous, "candidates", len(candidates))
	return "", "", nil, false
}

// LogoutOnce runs one logout attempt: the configured logout URL first, then
// up to ten actions discovered on the portal root (or the login page).
func (c *Client) LogoutOnce(ctx context.Context) (Result, error) {
	var lastDiag string
	var lastErr error

	if c.endpoints.LogoutURL != "" {
		ok, diag, err := c.tryLogout(ctx, page.LogoutAction{URL: c.endpoints.LogoutURL, Method: http.MethodGet})
		lastDiag, lastErr = diag, err
		if ok {
			return Result{Success: true, Headline: MsgLogoutSucceeded, Details: diag}, nil
		}
	}

	actions, err := c.discoverLogoutActions(ctx)
	switch {
	case len(actions) > 0:
		if len(actions) > maxLogoutCandidates {
			actions = actions[:maxLogoutCandidates]
		}
	case err != nil:
		lastDiag, lastErr = err.Error(), err
	default:
		lastDiag, lastErr = MsgNoLogoutAction, nil
	}

	for _, action := range actions {
		ok, diag, err := c.tryLogout(ctx, action)
		lastDiag, lastErr = diag, err
		if ok {
			return Result{Success: true, Headline: MsgLogoutSucceeded, Details: diag}, nil
		}
	}

	kind := ErrParseAmbiguous
	if lastErr != nil {
		kind = ErrNetwork
	}
	return Result{}, newAttemptError(kind, fmt.Sprintf(MsgLogoutFailed, lastDiag), lastErr)
}

func (c *Client) discoverLogoutActions(ctx context.Context) ([]page.LogoutAction, error) {
	var firstErr error
	for _, src := range []string{c.endpoints.PortalURL, c.endpoints.LoginPageURL} {
		if src == "" {
			continue
		}
		p, err := c.http.Get(ctx, src, nil)
		if err != nil {
			slog.Debug("Logout discovery request failed", "url", src, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if actions := page.DiscoverLogoutActions(p.Body, p.URL); len(actions) > 0 {
			return actions, nil
		}
	}
	return nil, firstErr
}

// tryLogout sends one logout request. It reports success only for status
// 200, 302 or 303 with logout evidence in the final URL or page.
func (c *Client) tryLogout(ctx context.Context, action page.LogoutAction) (bool, string, error) {
	header := http.Header{"Referer": {c.endpoints.PortalURL}}

	var resp *session.Page
	var err error
	if action.Method == http.MethodPost {
		form := url.Values{}
		for k, v := range action.Payload {
			form.Set(k, v)
		}
		resp, err = c.http.PostForm(ctx, action.URL, form, header)
	} else {
		resp, err = c.http.Get(ctx, action.URL, header)
	}
	if err != nil {
		diag := fmt.Sprintf(MsgLogoutRequestError, action.Method, action.URL, err)
		slog.Debug("Logout request failed", "method", action.Method, "url", action.URL, "error", err)
		return false, diag, err
	}

	diag := fmt.Sprintf(MsgLogoutDiagnostic, action.Method, action.URL, resp.StatusCode, resp.URL)
	slog.Debug("Logout request completed", "method", action.Method, "url", action.URL, "status", resp.StatusCode, "final_url", resp.URL)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusFound, http.StatusSeeOther:
	default:
		return false, diag, nil
	}
	return loggedOutEvidence(resp), diag, nil
}

func loggedOutEvidence(p *session.Page) bool {
	final := strings.ToLower(p.URL)
	for _, hint := range logoutHints {
		if strings.Contains(final, hint) {
			return true
		}
	}
	return page.LooksLikeLoginPage(p.Body, p.URL)
}

// Status fetches the portal root once and reports whether the session is
// authenticated, with the greeting and quota when it is.
func (c *Client) Status(ctx context.Context) (Status, error) {
	root, err := c.http.Get(ctx, c.endpoints.PortalURL, nil)
	if err != nil {
		return Status{}, newAttemptError(ErrNetwork, fmt.Sprintf(MsgStatusPageError, err), err)
	}
	if !root.OK() {
		return Status{}, newAttemptError(ErrNetwork, fmt.Sprintf(MsgStatusPageStatus, root.StatusCode), nil)
	}

	st := Status{URL: root.URL}
	if page.LooksLikeLoginPage(root.Body, root.URL) {
		st.Headline = MsgStatusLoggedOut
		return st, nil
	}

	st.LoggedIn = true
	st.Greeting = page.ExtractGreeting(root.Body)
	st.Headline, st.Details = page.QuotaHeadlineAndDetails(root.Body)
	st.Fields = page.ExtractQuotaFields(root.Body)
	if st.Details == "" {
		if h, d, p, ok := c.lookupQuota(ctx, root); ok {
			st.Headline, st.Details = h, d
			st.Fields = page.ExtractQuotaFields(p.Body)
		}
	}
	if st.Details == "" {
		st.Headline = MsgStatusLoggedIn
	}
	return st, nil
}

func joinLines(lines ...string) string {
	var kept []string
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
