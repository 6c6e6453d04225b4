// Package daemon detaches the controller from its terminal so it can keep
// driving the lights after the shell goes away. Go cannot double-fork the
// way the classic daemon dance does, so detachment re-executes the current
// binary into a new session with stdio redirected, then the parent exits.
package daemon

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// childEnv marks the re-executed child so it skips detaching again.
const childEnv = "QUADGLOW_DAEMON"

// IsChild reports whether this process is the detached child.
func IsChild() bool {
	return os.Getenv(childEnv) == "1"
}

// Detach re-executes the current command line into a new session with
// stdout/stderr on logPath and writes the child's pid to pidFile. It
// returns the child's pid in the parent, which must exit(0); in the
// detached child it records the pid and returns 0.
func Detach(logPath, pidFile string) (pid int, err error) {
	if IsChild() {
		return 0, writePIDFile(pidFile, os.Getpid())
	}
	if !supported() {
		return 0, errors.New("background mode is not supported on this platform")
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return 0, errors.Wrap(err, "create state directory")
	}
	logFd, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, errors.Wrap(err, "open daemon log")
	}
	defer logFd.Close()

	exePath, err := os.Executable()
	if err != nil {
		return 0, errors.Wrap(err, "resolve executable path")
	}

	cmd := exec.Command(exePath, os.Args[1:]...)
	cmd.Stdout = logFd
	cmd.Stderr = logFd
	cmd.Env = append(os.Environ(), childEnv+"=1")
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return 0, errors.Wrap(err, "start background process")
	}
	return cmd.Process.Pid, nil
}

// Announce reports the detached child's pid, shown only in verbose runs.
func Announce(w io.Writer, verbose bool, pid int) {
	if verbose {
		fmt.Fprintf(w, "Started with pid %d\n", pid)
	}
}

// RemovePIDFile cleans up after a graceful shutdown. Only the owning child
// removes the file.
func RemovePIDFile(pidFile string) {
	if !IsChild() {
		return
	}
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return
	}
	if pid, err := strconv.Atoi(string(data)); err == nil && pid == os.Getpid() {
		os.Remove(pidFile)
	}
}

func writePIDFile(pidFile string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(pidFile), 0o755); err != nil {
		return errors.Wrap(err, "create state directory")
	}
	return errors.Wrap(os.WriteFile(pidFile, []byte(strconv.Itoa(pid)), 0o644), "write pid file")
}
