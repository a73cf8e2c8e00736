package preflight

import (
	"bufio"
	"context"
	"strings"
)

// SSIDDetector reports the name of the connected WiFi network, or "" when
// it cannot be determined.
type SSIDDetector interface {
	SSID(ctx context.Context) (string, error)
}

// FirstOf asks each detector in turn and returns the first non-empty name.
type FirstOf []SSIDDetector

// SSID implements SSIDDetector. Errors are only returned when every detector failed.
func (f FirstOf) SSID(ctx context.Context) (string, error) {
	var lastErr error
	for _, d := range f {
		ssid, err := d.SSID(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if ssid = strings.TrimSpace(ssid); ssid != "" {
			return ssid, nil
		}
		lastErr = nil
	}
	return "", lastErr
}

// NoDetector is used on platforms without a detection method.
type NoDetector struct{}

// SSID implements SSIDDetector.
func (NoDetector) SSID(context.Context) (string, error) { return "", nil }

// CommandDetector runs a command and parses its output.
type CommandDetector struct {
	runner CommandRunner
	name   string
	args   []string
	parse  func(output string) string
}

// SSID implements SSIDDetector.
func (d *CommandDetector) SSID(ctx context.Context) (string, error) {
	out, err := d.runner.Run(ctx, d.name, d.args...)
	if err != nil {
		return "", err
	}
	return d.parse(out), nil
}

// NewIwgetidDetector uses `iwgetid -r` from wireless-tools.
func NewIwgetidDetector(runner CommandRunner) *CommandDetector {
	return &CommandDetector{
		runner: runner,
		name:   "iwgetid",
		args:   []string{"-r"},
		parse:  strings.TrimSpace,
	}
}

// NewNetshDetector uses `netsh wlan show interfaces`.
func NewNetshDetector(runner CommandRunner) *CommandDetector {
	return &CommandDetector{
		runner: runner,
		name:   "netsh",
		args:   []string{"wlan", "show", "interfaces"},
		parse:  ParseNetshSSID,
	}
}

// ParseNetshSSID extracts the SSID line (not BSSID) from netsh output.
func ParseNetshSSID(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(line)
		if !strings.HasPrefix(lower, "ssid") {
			continue
		}
		if _, value, ok := strings.Cut(line, ":"); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
