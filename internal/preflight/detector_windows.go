//go:build windows

package preflight

// DefaultDetector parses `netsh wlan show interfaces`.
func DefaultDetector(runner CommandRunner) SSIDDetector {
	return NewNetshDetector(runner)
}
