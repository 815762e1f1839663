package debugdetect

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var procRoot = "/proc"

func detectDebuggerAttached(pid int) (bool, error) {
	// Read /proc/<pid>/status and look for TracerPid field
	path := fmt.Sprintf("%s/%d/status", procRoot, pid)
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "TracerPid:") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return false, fmt.Errorf("malformed TracerPid line in %s: %s", path, line)
			}
			tracer, err := strconv.Atoi(fields[1])
			if err != nil {
				return false, fmt.Errorf("failed to parse TracerPid value: %w", err)
			}
			return tracer != 0, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("error reading %s: %w", path, err)
	}

	return false, fmt.Errorf("TracerPid field not found in %s", path)
}
