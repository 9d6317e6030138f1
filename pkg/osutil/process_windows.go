//go:build windows

package osutil

import (
	"os"
	"os/exec"
	"syscall"
)

// IsolateProcess starts cmd in a new process group. Windows has no
// group-wide kill, so cancellation only terminates the direct child.
func IsolateProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
		HideWindow:    true,
	}
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Kill)
	}
}
