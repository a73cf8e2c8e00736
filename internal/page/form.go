package page

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Spring Security form field names.
const (
	FieldUsername = "j_username"
	FieldPassword = "j_password"
	FieldSubmit   = "submit"
	SubmitValue   = "Login"
	AuthPath      = "/j_spring_security_check"
)

// FormFields maps input names to values.
type FormFields map[string]string

// WithCredentials returns a copy of f with the login fields set. Credential
// fields always override scraped fields of the same name.
func (f FormFields) WithCredentials(username, password string) FormFields {
	merged := make(FormFields, len(f)+3)
	for k, v := range f {
		merged[k] = v
	}
	merged[FieldUsername] = username
	merged[FieldPassword] = password
	merged[FieldSubmit] = SubmitValue
	return merged
}

// ExtractHiddenFields collects every named hidden input in the document.
// A missing value attribute yields an empty string.
func ExtractHiddenFields(markup string) FormFields {
	return hiddenFields(parse(markup))
}

func hiddenFields(top *html.Node) FormFields {
	fields := FormFields{}
	for _, n := range find(top, ".//input[@name]") {
		if !strings.EqualFold(strings.TrimSpace(htmlquery.SelectAttr(n, "type")), "hidden") {
			continue
		}
		name := htmlquery.SelectAttr(n, "name")
		if name == "" {
			continue
		}
		fields[name] = htmlquery.SelectAttr(n, "value")
	}
	return fields
}

// ResolveAuthURL returns the endpoint the login form posts to.
// A non-empty override wins unconditionally. Otherwise the first form's action
// is resolved against fallbackPageURL, defaulting to /j_spring_security_check.
func ResolveAuthURL(markup, fallbackPageURL, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}

	action := ""
	if form := findOne(parse(markup), "//form"); form != nil {
		action = strings.TrimSpace(htmlquery.SelectAttr(form, "action"))
	}
	if action == "" {
		action = AuthPath
	}

	if full := resolve(fallbackPageURL, action); full != "" {
		return full
	}
	return action
}

// LooksLikeLoginPage reports whether a page is the login form rather than an
// authenticated page. After a submission this is the only success check.
func LooksLikeLoginPage(markup, pageURL string) bool {
	body := strings.ToLower(markup)
	u := strings.ToLower(pageURL)
	return strings.Contains(body, "j_spring_security_check") ||
		strings.Contains(body, FieldUsername) ||
		strings.Contains(u, "login.html") ||
		strings.Contains(u, "/login")
}
