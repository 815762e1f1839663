package backend

import (
	"strconv"
)

// GDBServerName is the name of the gdbserver backend.
const GDBServerName = "gdbserver"

// FindGDBServer looks for gdbserver in PATH. gdbserver can only listen,
// it has no reverse mode.
func FindGDBServer(extraArgs []string) (Backend, error) {
	path, err := lookPath(GDBServerName)
	if err != nil {
		return nil, err
	}
	return newGDBServer(path, extraArgs), nil
}

func newGDBServer(path string, extraArgs []string) *execBackend {
	b := newExecBackend(GDBServerName, path, extraArgs)
	b.versionArgs = []string{"--version"}
	b.argv[ModeListen] = func(pid int, addr string, extra []string) []string {
		// options must precede the connection argument
		args := append([]string{}, extra...)
		return append(args, "--attach", addr, strconv.Itoa(pid))
	}
	return b
}
