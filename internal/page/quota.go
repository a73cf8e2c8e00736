package page

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Labels of the quota table rendered by the portal.
const (
	LabelRemainingMB = "Toplam Kalan Kota (MB)"
	LabelRemainingGB = "Toplam Kalan Kota (GB)"
	LabelTotalMB     = "Toplam Kota (MB)"
	LabelTimeLeft    = "Kalan Kota Zamanı"
	LabelExpiry      = "Sona Erme Tarihi"
	LabelSession     = "Oturum Süresi"
	LabelLoginTime   = "Login Zamanı"
)

// PreferredQuotaLabels is the order in which known fields are reported.
var PreferredQuotaLabels = []string{
	LabelRemainingMB,
	LabelTotalMB,
	LabelTimeLeft,
	LabelExpiry,
	LabelSession,
	LabelLoginTime,
}

// Headlines used when no remaining-quota field is present.
const (
	HeadlineQuotaInfo = "Kota Bilgileri"
	HeadlineQuota     = "Kalan Kota"
)

// Field is one label/value row.
type Field struct {
	Label string
	Value string
}

// QuotaFields is an ordered list of label/value rows. A repeated label keeps
// its first position and takes the last value.
type QuotaFields []Field

// Get returns the value stored for label.
func (q QuotaFields) Get(label string) (string, bool) {
	for _, f := range q {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

func (q QuotaFields) set(label, value string) QuotaFields {
	for i := range q {
		if q[i].Label == label {
			q[i].Value = value
			return q
		}
	}
	return append(q, Field{Label: label, Value: value})
}

// ExtractQuotaFields reads two-column rows whose first cell ends with a colon.
func ExtractQuotaFields(markup string) QuotaFields {
	return quotaFields(parse(markup))
}

func quotaFields(top *html.Node) QuotaFields {
	var fields QuotaFields
	for _, tr := range find(top, "//tr") {
		cells := find(tr, ".//td")
		if len(cells) < 2 {
			continue
		}
		left := strippedText(cells[0])
		right := strippedText(cells[1])
		if left == "" || right == "" || !strings.HasSuffix(left, ":") {
			continue
		}
		fields = fields.set(strings.TrimSpace(strings.TrimSuffix(left, ":")), right)
	}
	return fields
}

var (
	remainingPattern = regexp.MustCompile(`(?i)Toplam\s*Kalan\s*Kota\s*\(\s*(MB|GB)\s*\)\s*:\s*([0-9]+(?:[\.,][0-9]+)?)`)
	totalPattern     = regexp.MustCompile(`(?i)Toplam\s*Kota\s*\(\s*(MB|GB)\s*\)\s*:\s*([0-9]+(?:[\.,][0-9]+)?)`)
	genericPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(kalan\s*kota[^\d]{0,20}\d+[\.,]?\d*\s*(?:mb|gb))`),
		regexp.MustCompile(`(?i)(kota[^\d]{0,20}\d+[\.,]?\d*\s*(?:mb|gb))`),
		regexp.MustCompile(`(?i)(kullan[ıi]m[^\d]{0,20}\d+[\.,]?\d*\s*(?:mb|gb))`),
	}
)

// QuotaSummary renders quota information as text. Structured rows are used
// when present (preferred labels first, else the first four rows); otherwise
// the page text is scanned for quota-like phrases. Returns "" if none.
func QuotaSummary(markup string) string {
	return quotaSummary(parse(markup))
}

func quotaSummary(doc *html.Node) string {
	if fields := quotaFields(doc); len(fields) > 0 {
		lines := preferredLines(fields)
		if len(lines) == 0 {
			for i, f := range fields {
				if i == 4 {
					break
				}
				lines = append(lines, fmt.Sprintf("%s: %s", f.Label, f.Value))
			}
		}
		return strings.Join(lines, "\n")
	}

	text := strippedText(doc)
	if m := remainingPattern.FindStringSubmatch(text); m != nil {
		summary := fmt.Sprintf("Toplam Kalan Kota: %s %s", decimal(m[2]), strings.ToUpper(m[1]))
		if t := totalPattern.FindStringSubmatch(text); t != nil {
			summary += fmt.Sprintf(" / Toplam: %s %s", decimal(t[2]), strings.ToUpper(t[1]))
		}
		return summary
	}
	for _, re := range genericPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// QuotaHeadlineAndDetails returns a short headline ("Kalan Kota: 892.0 MB")
// and the known quota rows in preferred order. Without a table it falls back
// to QuotaSummary for the details.
func QuotaHeadlineAndDetails(markup string) (headline, details string) {
	doc := parse(markup)
	fields := quotaFields(doc)

	if v, ok := fields.Get(LabelRemainingMB); ok {
		headline = fmt.Sprintf("Kalan Kota: %s MB", v)
	} else if v, ok := fields.Get(LabelRemainingGB); ok {
		headline = fmt.Sprintf("Kalan Kota: %s GB", v)
	}

	lines := preferredLines(fields)
	if len(lines) == 0 {
		if summary := quotaSummary(doc); summary != "" {
			lines = append(lines, summary)
		}
	}
	details = strings.Join(lines, "\n")

	if headline == "" {
		headline = HeadlineQuota
		if details != "" {
			headline = HeadlineQuotaInfo
		}
	}
	return headline, details
}

func preferredLines(fields QuotaFields) []string {
	var lines []string
	for _, label := range PreferredQuotaLabels {
		if v, ok := fields.Get(label); ok {
			lines = append(lines, fmt.Sprintf("%s: %s", label, v))
		}
	}
	return lines
}

func decimal(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
}
