// Package quota turns the portal's quota rows into numbers and formats them
// for display.
package quota

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shini4i/gsbwifi/internal/page"
)

const (
	// Binary unit multipliers (1024-based), in megabytes.
	mbPerGB = 1024
	mbPerTB = mbPerGB * 1024
)

// Usage is the remaining and total quota in megabytes.
// TotalMB is zero when the portal did not report a total.
type Usage struct {
	RemainingMB float64
	TotalMB     float64
}

// ParseUsage reads the remaining quota (MB or GB row) and the total quota
// from fields. ok is false when no remaining quota could be parsed.
func ParseUsage(fields page.QuotaFields) (Usage, bool) {
	var u Usage
	if v, found := fields.Get(page.LabelRemainingMB); found {
		mb, err := parseNumber(v)
		if err != nil {
			return Usage{}, false
		}
		u.RemainingMB = mb
	} else if v, found := fields.Get(page.LabelRemainingGB); found {
		gb, err := parseNumber(v)
		if err != nil {
			return Usage{}, false
		}
		u.RemainingMB = gb * mbPerGB
	} else {
		return Usage{}, false
	}

	if v, found := fields.Get(page.LabelTotalMB); found {
		if mb, err := parseNumber(v); err == nil {
			u.TotalMB = mb
		}
	}
	return u, true
}

// UsedPercent returns the consumed share of the total quota in percent.
// ok is false without a positive total.
func (u Usage) UsedPercent() (float64, bool) {
	if u.TotalMB <= 0 {
		return 0, false
	}
	used := (u.TotalMB - u.RemainingMB) / u.TotalMB * 100
	switch {
	case used < 0:
		used = 0
	case used > 100:
		used = 100
	}
	return used, true
}

// String renders the usage as a single line, e.g.
// "Kalan: 892.0 MB / 32.0 GB (%97.3 kullanıldı)".
func (u Usage) String() string {
	line := "Kalan: " + FormatMegabytes(u.RemainingMB)
	if u.TotalMB > 0 {
		line += " / " + FormatMegabytes(u.TotalMB)
	}
	if pct, ok := u.UsedPercent(); ok {
		line += fmt.Sprintf(" (%%%.1f kullanıldı)", pct)
	}
	return line
}

// FormatMegabytes formats a megabyte amount using binary units (MB, GB, TB).
func FormatMegabytes(mb float64) string {
	switch {
	case mb >= mbPerTB:
		return fmt.Sprintf("%.1f TB", mb/mbPerTB)
	case mb >= mbPerGB:
		return fmt.Sprintf("%.1f GB", mb/mbPerGB)
	default:
		return fmt.Sprintf("%.1f MB", mb)
	}
}

// parseNumber accepts "892.0", "892,0" and "32.768,5".
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quota value %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid quota value %q: negative", s)
	}
	return v, nil
}
