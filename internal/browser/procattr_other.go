//go:build !unix && !windows

package browser

import "os/exec"

func detachProcess(cmd *exec.Cmd) {}
