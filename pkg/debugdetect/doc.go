// Package debugdetect provides utilities for detecting if a process
// is running under a debugger.
//
// The attach helper uses it to block until the debugger spawned for the
// IDE has taken hold of the process.
//
// Example usage:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
//	defer cancel()
//	if err := debugdetect.WaitForDebugger(ctx, os.Getpid(), 0); err != nil {
//		log.Fatalf("Debugger did not attach: %v", err)
//	}
//
// Supported platforms: linux, darwin, windows, freebsd
// Detects: ptrace-based debuggers (Delve, gdb, lldb, etc.)
package debugdetect
