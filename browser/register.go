package browser

import (
	"os"
	"sync"

	"github.com/greenweb/ecoscan/log"
)

var (
	processRegister   = map[int]struct{}{} //nolint:gochecknoglobals
	processRegisterMu = sync.Mutex{}       //nolint:gochecknoglobals
)

func register(logger *log.Logger, pid int) {
	processRegisterMu.Lock()
	defer processRegisterMu.Unlock()

	logger.Debugf("Process:register", "registered browser process pid %d", pid)

	processRegister[pid] = struct{}{}
}

func unregister(pid int) {
	processRegisterMu.Lock()
	defer processRegisterMu.Unlock()

	delete(processRegister, pid)
}

// ForceProcessShutdown kills every registered browser process. It is called
// when the host is shutting down on an interruption signal or a panic and
// the normal Close paths will not run.
func ForceProcessShutdown() {
	processRegisterMu.Lock()
	defer processRegisterMu.Unlock()

	for pid := range processRegister {
		Kill(pid)
	}
	processRegister = map[int]struct{}{}
}

// Kill will look for and kill the process with the given pid. Exported so
// integration tests can override it.
var Kill = func(pid int) { //nolint:gochecknoglobals
	p, err := os.FindProcess(pid)
	if err != nil {
		// optimistically continue and don't kill the process
		return
	}
	// no need to check the error since we're already dying.
	_ = p.Release()
	_ = p.Kill()
}
