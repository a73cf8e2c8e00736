package page

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// QuotaKeywords mark links and forms leading to a quota page.
var QuotaKeywords = []string{
	"kota", "kalan", "kullanım", "kullanim", "internet", "paket",
	"quota", "remaining", "usage",
}

// LogoutKeywords mark elements that end the session.
var LogoutKeywords = []string{
	"logout", "log out", "sign out",
	"çıkış", "cikis", "oturumu kapat", "güvenli çıkış",
}

var quotedTarget = regexp.MustCompile(`['"]([^'"]+)['"]`)

// LogoutAction is a candidate request that may end the portal session.
type LogoutAction struct {
	URL     string
	Method  string
	Payload FormFields
}

func (a LogoutAction) key() string {
	values := url.Values{}
	for k, v := range a.Payload {
		values.Set(k, v)
	}
	return a.Method + " " + a.URL + "?" + values.Encode()
}

// DiscoverCandidateURLs returns absolute URLs of anchors, form actions and
// onclick targets whose text or attributes mention one of keywords. Results
// keep document order, are unique, and exclude non-navigable targets.
func DiscoverCandidateURLs(markup, baseURL string, keywords []string) []string {
	doc := parse(markup)
	var urls []string
	seen := map[string]bool{}
	add := func(raw string) {
		full, ok := navigable(baseURL, raw)
		if !ok || seen[full] {
			return
		}
		seen[full] = true
		urls = append(urls, full)
	}

	for _, a := range find(doc, "//a[@href]") {
		href := htmlquery.SelectAttr(a, "href")
		if containsAny(strippedText(a)+" "+href, keywords) {
			add(href)
		}
	}
	for _, form := range find(doc, "//form") {
		action := htmlquery.SelectAttr(form, "action")
		if containsAny(strippedText(form)+" "+action, keywords) {
			add(action)
		}
	}
	for _, target := range onclickTargets(doc, keywords) {
		add(target)
	}
	return urls
}

// DiscoverLogoutActions finds requests that may end the session, in the
// order they should be tried: logout anchors (GET), logout buttons and inputs
// submitting their enclosing form, forms mentioning logout, then onclick
// handlers (GET). Duplicates of URL, method and payload are dropped.
func DiscoverLogoutActions(markup, baseURL string) []LogoutAction {
	doc := parse(markup)
	var actions []LogoutAction
	seen := map[string]bool{}
	add := func(raw, method string, payload FormFields) {
		full, ok := navigable(baseURL, raw)
		if !ok {
			return
		}
		if payload == nil {
			payload = FormFields{}
		}
		action := LogoutAction{URL: full, Method: method, Payload: payload}
		if seen[action.key()] {
			return
		}
		seen[action.key()] = true
		actions = append(actions, action)
	}

	for _, a := range find(doc, "//a[@href]") {
		href := htmlquery.SelectAttr(a, "href")
		if containsAny(strippedText(a)+" "+href, LogoutKeywords) {
			add(href, http.MethodGet, nil)
		}
	}

	for _, control := range find(doc, "//button | //input") {
		blob := strings.Join([]string{
			strippedText(control),
			htmlquery.SelectAttr(control, "value"),
			htmlquery.SelectAttr(control, "id"),
			htmlquery.SelectAttr(control, "name"),
		}, " ")
		if !containsAny(blob, LogoutKeywords) {
			continue
		}
		form := enclosingForm(control)
		if form == nil {
			continue
		}
		payload := hiddenFields(form)
		if name := htmlquery.SelectAttr(control, "name"); name != "" {
			payload[name] = htmlquery.SelectAttr(control, "value")
		}
		add(htmlquery.SelectAttr(form, "action"), formMethod(form), payload)
	}

	for _, form := range find(doc, "//form") {
		action := htmlquery.SelectAttr(form, "action")
		if containsAny(strippedText(form)+" "+action, LogoutKeywords) {
			add(action, formMethod(form), hiddenFields(form))
		}
	}

	for _, target := range onclickTargets(doc, LogoutKeywords) {
		add(target, http.MethodGet, nil)
	}
	return actions
}

// onclickTargets returns the first quoted string of every onclick handler
// that mentions one of keywords.
func onclickTargets(doc *html.Node, keywords []string) []string {
	var targets []string
	for _, n := range find(doc, "//*[@onclick]") {
		onclick := htmlquery.SelectAttr(n, "onclick")
		if !containsAny(onclick, keywords) {
			continue
		}
		if m := quotedTarget.FindStringSubmatch(onclick); m != nil {
			targets = append(targets, m[1])
		}
	}
	return targets
}

func formMethod(form *html.Node) string {
	method := strings.ToUpper(strings.TrimSpace(htmlquery.SelectAttr(form, "method")))
	if method == "" {
		return http.MethodPost
	}
	return method
}
