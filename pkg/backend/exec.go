package backend

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/go-delve/dlvattach/pkg/debugdetect"
	"github.com/go-delve/dlvattach/pkg/logflags"
)

// execBackend is a debugger started as an external command.
type execBackend struct {
	name        string
	path        string
	versionArgs []string
	extraArgs   []string
	// argv builds the command line for mode, nil means unsupported.
	argv map[Mode]func(pid int, addr string, extra []string) []string

	log          logflags.Logger
	pollInterval time.Duration
	wait         func(ctx context.Context, pid int, interval time.Duration) error
	start        func(cmd *exec.Cmd) error
}

func newExecBackend(name, path string, extraArgs []string) *execBackend {
	return &execBackend{
		name:      name,
		path:      path,
		extraArgs: extraArgs,
		argv:      map[Mode]func(int, string, []string) []string{},
		log:       logflags.BackendLogger().WithField("backend", name),
		wait:      debugdetect.WaitForDebugger,
	}
}

func (b *execBackend) Name() string {
	return b.name
}

// Register checks that the debugger can be run by asking for its version.
func (b *execBackend) Register(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, b.path, b.versionArgs...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("could not run %s: %v", b.path, err)
	}
	line := out
	if s := bufio.NewScanner(bytes.NewReader(out)); s.Scan() {
		line = s.Bytes()
	}
	b.log.Debugf("registered %s: %s", b.path, line)
	return nil
}

func (b *execBackend) WaitForAttach(ctx context.Context, pid int) error {
	b.log.Debugf("waiting for a debugger to attach to %d", pid)
	if err := b.wait(ctx, pid, b.pollInterval); err != nil {
		return err
	}
	b.log.Debugf("debugger attached to %d", pid)
	return nil
}

func (b *execBackend) Configure(mode Mode, pid int) (func(host string, port int) error, error) {
	mk := b.argv[mode]
	if mk == nil {
		return nil, fmt.Errorf("%s: %v: %w", b.name, mode, ErrModeUnsupported)
	}
	return func(host string, port int) error {
		args := mk(pid, net.JoinHostPort(host, strconv.Itoa(port)), b.extraArgs)
		cmd := exec.Command(b.path, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		b.log.Debugf("starting %s %q", b.path, args)
		start := b.start
		if start == nil {
			start = b.startDetached
		}
		if err := start(cmd); err != nil {
			return fmt.Errorf("could not start %s: %v", b.name, err)
		}
		return nil
	}, nil
}

// startDetached starts cmd in its own process group. The debugger is
// reaped in the background and keeps running after the caller returns.
func (b *execBackend) startDetached(cmd *exec.Cmd) error {
	setProcAttr(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	pid := cmd.Process.Pid
	b.log.Debugf("%s started with pid %d", b.name, pid)
	go func() {
		err := cmd.Wait()
		b.log.Debugf("%s (pid %d) exited: %v", b.name, pid, err)
	}()
	return nil
}

var lookPath = exec.LookPath
