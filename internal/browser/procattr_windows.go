//go:build windows

package browser

import (
	"os/exec"
	"syscall"
)

// detachProcess keeps console Ctrl+C events from reaching Chrome.
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
