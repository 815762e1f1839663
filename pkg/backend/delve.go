package backend

import (
	"strconv"
)

// DelveName is the name of the Delve backend.
const DelveName = "dlv"

// FindDelve looks for dlv in PATH.
//
// In reverse mode dlv is started as a DAP server that dials the IDE
// (dlv dap --client-addr), the IDE then asks it to attach to the process.
// In listen mode dlv attaches to the process right away and serves
// headless clients on the given address.
func FindDelve(extraArgs []string) (Backend, error) {
	path, err := lookPath(DelveName)
	if err != nil {
		return nil, err
	}
	return newDelve(path, extraArgs), nil
}

func newDelve(path string, extraArgs []string) *execBackend {
	b := newExecBackend(DelveName, path, extraArgs)
	b.versionArgs = []string{"version"}
	b.argv[ModeReverse] = func(pid int, addr string, extra []string) []string {
		return append([]string{"dap", "--client-addr=" + addr}, extra...)
	}
	b.argv[ModeListen] = func(pid int, addr string, extra []string) []string {
		args := []string{"attach", strconv.Itoa(pid), "--headless", "--listen=" + addr, "--api-version=2", "--accept-multiclient"}
		return append(args, extra...)
	}
	return b
}
