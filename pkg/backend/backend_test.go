package backend

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fakeBackend struct {
	name string
}

func (b *fakeBackend) Name() string { return b.name }
func (b *fakeBackend) Register(ctx context.Context) error { return nil }
func (b *fakeBackend) WaitForAttach(ctx context.Context, pid int) error { return nil }
func (b *fakeBackend) Configure(mode Mode, pid int) (func(string, int) error, error) {
	return nil, ErrModeUnsupported
}

func candidate(name string, present bool) Candidate {
	return Candidate{
		Name: name,
		Find: func() (Backend, error) {
			if !present {
				return nil, errors.New("not in PATH")
			}
			return &fakeBackend{name}, nil
		},
	}
}

func TestLookup(t *testing.T) {
	testCases := []struct {
		preferred  string
		candidates []Candidate
		tgt        string
		tgterr     string
	}{
		{"", []Candidate{candidate("dlv", true), candidate("gdbserver", true)}, "dlv", ""},
		{"", []Candidate{candidate("dlv", false), candidate("gdbserver", true)}, "gdbserver", ""},
		{"gdbserver", []Candidate{candidate("dlv", true), candidate("gdbserver", true)}, "gdbserver", ""},
		{"", []Candidate{candidate("dlv", false), candidate("gdbserver", false)}, "", "tried: dlv (not in PATH), gdbserver (not in PATH)"},
		{"dlv", []Candidate{candidate("dlv", false), candidate("gdbserver", true)}, "", "tried: dlv (not in PATH)"},
		{"lldb", []Candidate{candidate("dlv", true)}, "", `unknown debugger backend "lldb"`},
		{"", nil, "", "no candidates"},
	}

	for _, tc := range testCases {
		b, err := Lookup(tc.preferred, tc.candidates)
		if tc.tgterr != "" {
			if err == nil {
				t.Errorf("%q: expected error %q, got backend %s", tc.preferred, tc.tgterr, b.Name())
				continue
			}
			if !strings.Contains(err.Error(), tc.tgterr) {
				t.Errorf("%q: expected error containing %q, got %q", tc.preferred, tc.tgterr, err)
			}
			if !errors.Is(err, ErrNoBackend) {
				t.Errorf("%q: error %v should match ErrNoBackend", tc.preferred, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.preferred, err)
			continue
		}
		if b.Name() != tc.tgt {
			t.Errorf("%q: expected %s, got %s", tc.preferred, tc.tgt, b.Name())
		}
	}
}

func TestDefaultCandidatesMissing(t *testing.T) {
	old := lookPath
	lookPath = func(name string) (string, error) {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	defer func() {
		lookPath = old
	}()

	_, err := Lookup("", DefaultCandidates(nil))
	if !errors.Is(err, ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
	if !reflect.DeepEqual(nf.Tried, []string{DelveName, GDBServerName}) {
		t.Fatalf("unexpected candidates tried: %v", nf.Tried)
	}
}

func TestConfigure(t *testing.T) {
	testCases := []struct {
		b      *execBackend
		mode   Mode
		tgt    []string
		tgterr error
	}{
		{
			newDelve("/usr/bin/dlv", nil),
			ModeReverse,
			[]string{"/usr/bin/dlv", "dap", "--client-addr=127.0.0.1:9000"},
			nil,
		},
		{
			newDelve("/usr/bin/dlv", []string{"--log"}),
			ModeListen,
			[]string{"/usr/bin/dlv", "attach", "4242", "--headless", "--listen=127.0.0.1:9000", "--api-version=2", "--accept-multiclient", "--log"},
			nil,
		},
		{
			newGDBServer("/usr/bin/gdbserver", []string{"--once"}),
			ModeListen,
			[]string{"/usr/bin/gdbserver", "--once", "--attach", "127.0.0.1:9000", "4242"},
			nil,
		},
		{
			newGDBServer("/usr/bin/gdbserver", nil),
			ModeReverse,
			nil,
			ErrModeUnsupported,
		},
	}

	for _, tc := range testCases {
		var started []string
		tc.b.start = func(cmd *exec.Cmd) error {
			started = cmd.Args
			return nil
		}
		configure, err := tc.b.Configure(tc.mode, 4242)
		if tc.tgterr != nil {
			if !errors.Is(err, tc.tgterr) {
				t.Errorf("%s %v: expected %v, got %v", tc.b.name, tc.mode, tc.tgterr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s %v: unexpected error %v", tc.b.name, tc.mode, err)
			continue
		}
		if err := configure("127.0.0.1", 9000); err != nil {
			t.Errorf("%s %v: configure failed: %v", tc.b.name, tc.mode, err)
		}
		if !reflect.DeepEqual(started, tc.tgt) {
			t.Errorf("%s %v: expected %q, got %q", tc.b.name, tc.mode, tc.tgt, started)
		}
	}
}

func TestConfigureStartError(t *testing.T) {
	b := newDelve("/usr/bin/dlv", nil)
	b.start = func(cmd *exec.Cmd) error {
		return errors.New("permission denied")
	}
	configure, err := b.Configure(ModeListen, 1)
	if err != nil {
		t.Fatal(err)
	}
	err = configure("127.0.0.1", 9000)
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("expected start error, got %v", err)
	}
}

func TestWaitForAttach(t *testing.T) {
	b := newDelve("/usr/bin/dlv", nil)
	b.pollInterval = time.Millisecond
	var gotPid int
	var gotInterval time.Duration
	b.wait = func(ctx context.Context, pid int, interval time.Duration) error {
		gotPid, gotInterval = pid, interval
		return nil
	}
	if err := b.WaitForAttach(context.Background(), 4242); err != nil {
		t.Fatal(err)
	}
	if gotPid != 4242 || gotInterval != time.Millisecond {
		t.Fatalf("unexpected wait arguments: pid=%d interval=%v", gotPid, gotInterval)
	}

	boom := errors.New("boom")
	b.wait = func(ctx context.Context, pid int, interval time.Duration) error {
		return boom
	}
	if err := b.WaitForAttach(context.Background(), 4242); err != boom {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

func TestRegister(t *testing.T) {
	// The test binary itself stands in for the debugger executable.
	b := newExecBackend("self", os.Args[0], nil)
	b.versionArgs = []string{"-test.run=^$"}
	if err := b.Register(context.Background()); err != nil {
		t.Fatal(err)
	}

	b = newExecBackend("missing", "/nonexistent/dlv", nil)
	if err := b.Register(context.Background()); err == nil {
		t.Fatal("expected an error registering a missing executable")
	}
}

func TestModeString(t *testing.T) {
	if ModeReverse.String() != "reverse" || ModeListen.String() != "listen" || Mode(7).String() != "Mode(7)" {
		t.Fatalf("unexpected mode names: %v %v %v", ModeReverse, ModeListen, Mode(7))
	}
}
