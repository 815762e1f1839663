//go:build !windows

package backend

import (
	"os/exec"
	"syscall"
)

// setProcAttr puts the debugger in a new session so that signals sent to
// the debugged process group do not reach it.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
