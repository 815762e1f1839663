// Package backend locates the debugger that performs the actual attach
// and describes how to start it for a process.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Mode is the direction of the connection between the debugger and the
// IDE.
type Mode int

const (
	// ModeReverse means the IDE is listening and the debugger connects
	// to it.
	ModeReverse Mode = iota
	// ModeListen means the debugger listens and the IDE connects to it.
	ModeListen
)

func (m Mode) String() string {
	switch m {
	case ModeReverse:
		return "reverse"
	case ModeListen:
		return "listen"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ErrNoBackend is returned by Lookup when none of the candidates is
// available.
var ErrNoBackend = errors.New("no debugger backend available")

// ErrModeUnsupported is returned by Backend.Configure for a mode the
// backend can not serve.
var ErrModeUnsupported = errors.New("mode not supported by backend")

// Backend is a debugger able to attach to a running process on behalf of
// an IDE.
type Backend interface {
	// Name identifies the backend, it is the value accepted by Lookup.
	Name() string
	// Register prepares the backend before any attach is attempted.
	Register(ctx context.Context) error
	// WaitForAttach blocks until the debugger has attached to pid or ctx
	// is done.
	WaitForAttach(ctx context.Context, pid int) error
	// Configure returns a function starting the debugger for pid so that
	// it meets the IDE at host:port.
	Configure(mode Mode, pid int) (func(host string, port int) error, error)
}

// Candidate is a backend that may or may not be present on this system.
type Candidate struct {
	Name string
	// Find returns the backend or an error explaining why it is missing.
	Find func() (Backend, error)
}

// NotFoundError reports every candidate Lookup tried.
type NotFoundError struct {
	Tried  []string
	Causes []error
}

func (e *NotFoundError) Error() string {
	if len(e.Tried) == 0 {
		return "no debugger backend available: no candidates"
	}
	parts := make([]string, len(e.Tried))
	for i := range e.Tried {
		parts[i] = e.Tried[i]
		if i < len(e.Causes) && e.Causes[i] != nil {
			parts[i] += " (" + e.Causes[i].Error() + ")"
		}
	}
	return "no debugger backend available, Delve (dlv) or gdbserver is required; tried: " + strings.Join(parts, ", ")
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNoBackend
}

// Lookup returns the first available candidate. If preferred is not empty
// only the candidate with that name is considered.
func Lookup(preferred string, candidates []Candidate) (Backend, error) {
	nf := &NotFoundError{}
	for _, c := range candidates {
		if preferred != "" && c.Name != preferred {
			continue
		}
		b, err := c.Find()
		if err == nil {
			return b, nil
		}
		nf.Tried = append(nf.Tried, c.Name)
		nf.Causes = append(nf.Causes, err)
	}
	if preferred != "" && len(nf.Tried) == 0 {
		return nil, fmt.Errorf("unknown debugger backend %q: %w", preferred, ErrNoBackend)
	}
	return nil, nf
}

// DefaultCandidates returns Delve followed by gdbserver, both searched in
// PATH. extraArgs are added to the command line of whichever backend is
// used.
func DefaultCandidates(extraArgs []string) []Candidate {
	return []Candidate{
		{Name: DelveName, Find: func() (Backend, error) { return FindDelve(extraArgs) }},
		{Name: GDBServerName, Find: func() (Backend, error) { return FindGDBServer(extraArgs) }},
	}
}
