//go:build unix

package browser

import (
	"os/exec"
	"syscall"
)

// detachProcess starts Chrome in its own process group with no parent-death
// signal, so neither Ctrl+C in the terminal nor our exit takes it down.
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
