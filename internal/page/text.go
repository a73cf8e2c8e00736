// Package page holds the HTML heuristics used against the captive portal.
// Every function is pure: it takes markup as a string and returns a typed
// result, so the rules can be exercised with fixture pages alone.
package page

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

var spaceRun = regexp.MustCompile(`\s+`)

// parse never fails on malformed markup; a nil node is returned only when the
// reader itself fails, which cannot happen for a strings.Reader.
func parse(markup string) *html.Node {
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	if err != nil {
		return nil
	}
	return doc
}

func find(top *html.Node, expr string) []*html.Node {
	if top == nil {
		return nil
	}
	return htmlquery.Find(top, expr)
}

func findOne(top *html.Node, expr string) *html.Node {
	if top == nil {
		return nil
	}
	return htmlquery.FindOne(top, expr)
}

// textChunks returns the trimmed, non-empty text nodes under n in document
// order, skipping script and style contents.
func textChunks(n *html.Node) []string {
	var chunks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				chunks = append(chunks, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return chunks
}

// strippedText joins the text chunks of n with single spaces.
func strippedText(n *html.Node) string {
	return normalizeSpace(strings.Join(textChunks(n), " "))
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// containsAny reports whether s contains one of the lowercase keywords under
// either the default or the Turkish lowercasing rules ("ÇIKIŞ" becomes
// "çikiş" and "çıkış" respectively).
func containsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	turkish := strings.ToLowerSpecial(unicode.TurkishCase, s)
	for _, k := range keywords {
		if strings.Contains(lower, k) || strings.Contains(turkish, k) {
			return true
		}
	}
	return false
}

// resolve joins ref onto base the way a browser would. It returns "" when
// either side cannot be parsed.
func resolve(base, ref string) string {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}

// navigable resolves ref against base and drops targets that cannot be
// fetched, such as javascript: and mailto: links. The fragment is removed.
func navigable(base, ref string) (string, bool) {
	if strings.TrimSpace(ref) == "" {
		return "", false
	}
	full := resolve(base, ref)
	if full == "" {
		return "", false
	}
	u, err := url.Parse(full)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}

func enclosingForm(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "form" {
			return p
		}
	}
	return nil
}
