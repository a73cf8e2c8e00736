package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shini4i/gsbwifi/internal/session"
)

type handlerFunc func(form url.Values) (*session.Page, error)

type recordedRequest struct {
	Method string
	URL    string
	Form   url.Values
	Header http.Header
}

// fakeDoer serves scripted pages keyed by "METHOD URL".
type fakeDoer struct {
	routes   map[string]handlerFunc
	requests []recordedRequest
	closed   int
}

func newFakeDoer() *fakeDoer {
	return &fakeDoer{routes: map[string]handlerFunc{}}
}

func (f *fakeDoer) on(method, rawURL string, h handlerFunc) *fakeDoer {
	f.routes[method+" "+rawURL] = h
	return f
}

func (f *fakeDoer) page(method, rawURL string, p *session.Page) *fakeDoer {
	return f.on(method, rawURL, func(url.Values) (*session.Page, error) { return p, nil })
}

func (f *fakeDoer) fail(method, rawURL string, err error) *fakeDoer {
	return f.on(method, rawURL, func(url.Values) (*session.Page, error) { return nil, err })
}

func (f *fakeDoer) Get(_ context.Context, rawURL string, header http.Header) (*session.Page, error) {
	return f.serve(http.MethodGet, rawURL, nil, header)
}

func (f *fakeDoer) PostForm(_ context.Context, rawURL string, form url.Values, header http.Header) (*session.Page, error) {
	return f.serve(http.MethodPost, rawURL, form, header)
}

func (f *fakeDoer) Close() { f.closed++ }

func (f *fakeDoer) serve(method, rawURL string, form url.Values, header http.Header) (*session.Page, error) {
	f.requests = append(f.requests, recordedRequest{Method: method, URL: rawURL, Form: form, Header: header})
	h, ok := f.routes[method+" "+rawURL]
	if !ok {
		return nil, fmt.Errorf("unexpected request %s %s", method, rawURL)
	}
	return h(form)
}

func (f *fakeDoer) count(method, rawURL string) int {
	n := 0
	for _, r := range f.requests {
		if r.Method == method && r.URL == rawURL {
			n++
		}
	}
	return n
}

func htmlPage(rawURL, body string) *session.Page {
	return &session.Page{StatusCode: http.StatusOK, URL: rawURL, Body: body, Header: http.Header{}}
}

func statusPage(rawURL string, code int) *session.Page {
	return &session.Page{StatusCode: code, URL: rawURL, Header: http.Header{}}
}

const (
	portalURL    = "https://wifi.gsb.gov.tr"
	loginURL     = "https://wifi.gsb.gov.tr/login.html"
	authURL      = "https://wifi.gsb.gov.tr/j_spring_security_check"
	logoutURL    = "https://wifi.gsb.gov.tr/logout"
	indexURL     = "https://wifi.gsb.gov.tr/index.html"
	loginFormErr = "https://wifi.gsb.gov.tr/login.html?error=true"
)

var testEndpoints = Endpoints{
	PortalURL:    portalURL,
	LoginPageURL: loginURL,
	LogoutURL:    logoutURL,
}

const loginFormHTML = `<html><body>
<form action="j_spring_security_check" method="post">
  <input type="hidden" name="javax.faces.ViewState" value="vs-1">
  <input type="text" name="j_username"><input type="password" name="j_password">
</form></body></html>`

const quotaHTML = `<html><body>
<span>Hoş geldiniz Ahmet Yılmaz</span>
<table>
<tr><td>Toplam Kalan Kota (MB):</td><td>892.0</td></tr>
<tr><td>Toplam Kota (MB):</td><td>32768.0</td></tr>
</table>
<a href="/logout">Güvenli Çıkış</a>
</body></html>`

const welcomeHTML = `<html><body><p>Hoş geldiniz</p><a href="/kota.html">Kota bilgilerim</a></body></html>`
