package debugdetect

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                       = windows.NewLazySystemDLL("kernel32.dll")
	procIsDebuggerPresent          = kernel32.NewProc("IsDebuggerPresent")
	procCheckRemoteDebuggerPresent = kernel32.NewProc("CheckRemoteDebuggerPresent")
)

func detectDebuggerAttached(pid int) (bool, error) {
	if pid == os.Getpid() {
		// This checks the BeingDebugged flag in the PEB
		flag, _, _ := procIsDebuggerPresent.Call()
		return flag != 0, nil
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return false, fmt.Errorf("OpenProcess(%d) failed: %w", pid, err)
	}
	defer windows.CloseHandle(h)

	var present int32
	r, _, err := procCheckRemoteDebuggerPresent.Call(uintptr(h), uintptr(unsafe.Pointer(&present)))
	if r == 0 {
		return false, fmt.Errorf("CheckRemoteDebuggerPresent failed: %w", err)
	}
	return present != 0, nil
}
