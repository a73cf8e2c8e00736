//go:build !windows

package preflight

import "os/exec"

func hideWindow(*exec.Cmd) {}
