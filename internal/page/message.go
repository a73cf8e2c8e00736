package page

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Failure reasons synthesised when the portal shows no explicit message.
const (
	ReasonInvalidCredentials = "Giriş yapılamadı: TC/şifre yanlış olabilir."
	ReasonUnverified         = "Giriş doğrulanamadı: GSB WiFi ağına bağlı olmayabilirsin veya sistem geçici olarak yanıt vermiyor olabilir."
)

// alertXPaths locate the regions portals use for flash messages.
var alertXPaths = func() []string {
	paths := []string{"//div[@role='alert']"}
	for _, class := range []string{"alert", "error", "errors", "message"} {
		paths = append(paths, classXPath(class))
	}
	for _, id := range []string{"error", "errors", "message"} {
		paths = append(paths, fmt.Sprintf("//*[@id='%s']", id))
	}
	for _, class := range []string{"text-danger", "text-warning"} {
		paths = append(paths, classXPath(class))
	}
	return paths
}()

func classXPath(class string) string {
	return fmt.Sprintf("//*[contains(concat(' ', normalize-space(@class), ' '), ' %s ')]", class)
}

var errorSentence = regexp.MustCompile(`(?i)[^.]{0,120}(hatalı|yanlış|geçersiz|başarısız|invalid|failed|error)[^.]{0,120}`)

// failureHints suggest the credentials themselves were refused.
var failureHints = []string{
	"hatalı", "yanlış", "geçersiz", "invalid", "başarısız", "failed", "kullanıcı", "şifre", "sifre",
}

// ExtractErrorMessage returns the most detailed rejection message on a page:
// text of alert regions (4 to 260 characters) and sentences around failure
// keywords (6 to 260 characters). The longest candidate wins; "" if none.
func ExtractErrorMessage(markup string) string {
	doc := parse(markup)

	var candidates []string
	for _, expr := range alertXPaths {
		for _, n := range find(doc, expr) {
			txt := strippedText(n)
			if l := utf8.RuneCountInString(txt); l >= 4 && l <= 260 {
				candidates = append(candidates, txt)
			}
		}
	}

	text := strippedText(doc)
	for _, loc := range errorSentence.FindAllStringIndex(text, -1) {
		snippet := normalizeSpace(text[loc[0]:loc[1]])
		if l := utf8.RuneCountInString(snippet); l >= 6 && l <= 260 {
			candidates = append(candidates, snippet)
		}
	}

	best := ""
	for _, c := range candidates {
		lc, lb := utf8.RuneCountInString(c), utf8.RuneCountInString(best)
		if lc > lb || (lc == lb && c > best) {
			best = c
		}
	}
	return best
}

// GuessFailureReason picks a generic reason when ExtractErrorMessage finds
// nothing: wrong credentials if the page mentions them, otherwise a network
// or portal hiccup.
func GuessFailureReason(markup string) string {
	if containsAny(strippedText(parse(markup)), failureHints) {
		return ReasonInvalidCredentials
	}
	return ReasonUnverified
}

// FailureReason is ExtractErrorMessage with GuessFailureReason as fallback.
func FailureReason(markup string) string {
	if msg := ExtractErrorMessage(markup); msg != "" {
		return msg
	}
	return GuessFailureReason(markup)
}

var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)hoş\s*geldiniz\s*[:\-]?\s*([^\n\r]{3,60})`),
	regexp.MustCompile(`(?i)sayın\s+([^\n\r]{3,60})`),
}

// ExtractGreeting returns the account holder name shown on authenticated
// pages ("Hoş geldiniz Ad Soyad" or "Sayın Ad Soyad"), or "".
func ExtractGreeting(markup string) string {
	// One text node per line keeps the capture inside the greeting element.
	text := strings.Join(textChunks(parse(markup)), "\n")
	for _, re := range greetingPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
