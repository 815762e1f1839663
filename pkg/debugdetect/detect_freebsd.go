package debugdetect

/*
#include <sys/types.h>
#include <sys/sysctl.h>
#include <sys/user.h>
#include <libutil.h>
#include <stdlib.h>
#cgo LDFLAGS: -lutil
*/
import "C"

import (
	"fmt"
	"unsafe"
)

const (
	// P_TRACED flag from sys/proc.h
	pTracedFlag = 0x00000800
)

func detectDebuggerAttached(pid int) (bool, error) {
	kp, err := C.kinfo_getproc(C.int(pid))
	if kp == nil {
		return false, fmt.Errorf("kinfo_getproc failed: %v", err)
	}
	defer C.free(unsafe.Pointer(kp))

	return (int(kp.ki_flag) & pTracedFlag) != 0, nil
}
