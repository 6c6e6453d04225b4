//go:build windows

package daemon

import "os/exec"

func supported() bool { return false }

func setSysProcAttr(cmd *exec.Cmd) {}
