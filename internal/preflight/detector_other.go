//go:build !linux && !windows

package preflight

// DefaultDetector reports no network name on this platform.
func DefaultDetector(CommandRunner) SSIDDetector {
	return NoDetector{}
}
