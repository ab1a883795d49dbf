//go:build !linux

package browser

import "os/exec"

// killAfterParent is a no-op where parent-death signals are unsupported; the
// process register and explicit Terminate cover those platforms.
func killAfterParent(_ *exec.Cmd) {}
