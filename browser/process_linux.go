package browser

import (
	"os/exec"
	"syscall"
)

// killAfterParent makes the kernel deliver SIGKILL to the browser process
// when the parent dies, so a crashed host cannot leak browsers.
func killAfterParent(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = syscall.SIGKILL
}
