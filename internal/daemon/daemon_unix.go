//go:build !windows

package daemon

import (
	"os/exec"
	"syscall"
)

func supported() bool { return true }

// setSysProcAttr detaches the child into its own session, severing the
// controlling terminal.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
