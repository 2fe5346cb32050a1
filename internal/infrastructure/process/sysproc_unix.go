//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// detachProcessGroup starts the child in a process group of its own
func detachProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
