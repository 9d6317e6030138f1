//go:build unix

package osutil

import (
	"os/exec"
	"syscall"
)

// IsolateProcess runs cmd in its own process group and makes context
// cancellation kill the whole group, so helpers spawned by the child
// (e.g. git-remote-https) do not outlive it.
func IsolateProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
