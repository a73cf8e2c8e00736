//go:build linux

package preflight

// DefaultDetector asks NetworkManager over D-Bus, then falls back to iwgetid.
func DefaultDetector(runner CommandRunner) SSIDDetector {
	return FirstOf{
		NewNetworkManagerDetector(),
		NewIwgetidDetector(runner),
	}
}
