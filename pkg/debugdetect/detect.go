package debugdetect

import (
	"context"
	"os"
	"time"
)

// DefaultPollInterval is how often WaitForDebugger checks the target when
// no interval is given.
const DefaultPollInterval = 500 * time.Millisecond

// IsDebuggerAttached returns true if the current process is being debugged
// by a ptrace-based debugger (Delve, gdb, lldb, etc.).
//
// Returns an error if the debugger state cannot be determined.
func IsDebuggerAttached() (bool, error) {
	return IsAttached(os.Getpid())
}

// IsAttached returns true if the process with the given pid is being
// debugged.
func IsAttached(pid int) (bool, error) {
	return detectDebuggerAttached(pid)
}

// WaitForDebugger blocks until a debugger is attached to pid, detection
// fails or ctx is done.
func WaitForDebugger(ctx context.Context, pid int, interval time.Duration) error {
	return waitFor(ctx, interval, func() (bool, error) { return IsAttached(pid) })
}

func waitFor(ctx context.Context, interval time.Duration, attached func() (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ok, err := attached()
		if ok || err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
