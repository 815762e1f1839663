// Package attach connects the running process to an IDE's remote
// debugger when the configuration asks for it.
//
// Two modes are supported. With Reverse the IDE is already listening and
// the helper checks that it can be reached before handing over to the
// debugger. With Listen the debugger is started first and the helper
// blocks until the IDE has attached.
//
// Typical use at the top of main:
//
//	h, err := attach.FromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	configure, err := h.BackendConfigure(backend.ModeListen)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := h.Listen(context.Background(), configure, false); err != nil {
//		log.Fatal(err)
//	}
package attach

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/go-delve/dlvattach/pkg/backend"
	"github.com/go-delve/dlvattach/pkg/config"
	"github.com/go-delve/dlvattach/pkg/console"
	"github.com/go-delve/dlvattach/pkg/logflags"
)

// ConfigureFunc performs the IDE specific part of the attach, pointing
// the debugger at host:port.
type ConfigureFunc func(host string, port int) error

// Helper decides whether to attach and drives the attach. It is built
// once and is safe to reuse; the configuration never changes.
type Helper struct {
	cfg     config.Config
	backend backend.Backend
	pid     int

	console *console.Console
	log     logflags.Logger
	plog    logflags.Logger
}

type options struct {
	console    *console.Console
	candidates []backend.Candidate
	backend    backend.Backend
	pid        int
}

// Option customizes a Helper.
type Option func(*options)

// WithConsole sets where operator messages are printed, standard output
// by default.
func WithConsole(c *console.Console) Option {
	return func(o *options) { o.console = c }
}

// WithCandidates replaces the backends searched by New.
func WithCandidates(candidates []backend.Candidate) Option {
	return func(o *options) { o.candidates = candidates }
}

// WithBackend skips the backend lookup and uses b.
func WithBackend(b backend.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithPid sets the process the debugger attaches to, the current process
// by default.
func WithPid(pid int) Option {
	return func(o *options) { o.pid = pid }
}

// New returns a Helper for cfg. The debugger backend is resolved here: if
// none is available the returned error matches backend.ErrNoBackend.
func New(cfg config.Config, opts ...Option) (*Helper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{pid: os.Getpid()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.console == nil {
		o.console = console.Stdout()
	}
	b := o.backend
	if b == nil {
		if o.candidates == nil {
			o.candidates = backend.DefaultCandidates(cfg.BackendArgs)
		}
		var err error
		b, err = backend.Lookup(cfg.Backend, o.candidates)
		if err != nil {
			return nil, err
		}
	}
	log := logflags.AttachLogger()
	log.Debugf("using backend %s for pid %d, debugger at %s", b.Name(), o.pid, cfg.Addr())
	return &Helper{
		cfg:     cfg,
		backend: b,
		pid:     o.pid,
		console: o.console,
		log:     log,
		plog:    logflags.ProbeLogger(),
	}, nil
}

// FromEnv returns a Helper configured from the environment variables
// listed in pkg/config.
func FromEnv(opts ...Option) (*Helper, error) {
	cfg, err := config.FromEnv(config.Default())
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Config returns the configuration of h.
func (h *Helper) Config() config.Config {
	return h.cfg
}

// Backend returns the debugger backend resolved by New.
func (h *Helper) Backend() backend.Backend {
	return h.backend
}

// BackendConfigure returns a ConfigureFunc that starts the resolved
// backend for the helper's pid in the given mode.
func (h *Helper) BackendConfigure(mode backend.Mode) (ConfigureFunc, error) {
	f, err := h.backend.Configure(mode, h.pid)
	if err != nil {
		return nil, err
	}
	return ConfigureFunc(f), nil
}

func (h *Helper) enabled(forceNow bool) bool {
	if h.cfg.StartDebugger || forceNow {
		return true
	}
	h.log.Debugf("not attaching: %s not set and attach not forced", config.EnvStartDebugger)
	return false
}

// Reverse attaches to an IDE that listens for the debugger to connect.
//
// The backend is always registered first. Then, if attaching is enabled
// or forceNow is set, a single TCP connection to the IDE is opened and
// closed to check that it is reachable and configure is called. When the
// IDE can not be reached a warning asking for a reverse port forward is
// printed, configure is not called and nil is returned.
//
// Errors from the registration and from configure are returned.
func (h *Helper) Reverse(ctx context.Context, configure ConfigureFunc, forceNow bool) error {
	if err := h.backend.Register(ctx); err != nil {
		return fmt.Errorf("registering %s: %w", h.backend.Name(), err)
	}
	if !h.enabled(forceNow) {
		return nil
	}

	addr := h.cfg.Addr()
	h.console.Printf("\n\n Attempting to communicate to the IDE\n")
	h.console.Println(
		console.S(console.Attention, " **IMPORTANT** "),
		console.S(console.Normal, "Remote debugger configuration in the IDE MUST be run first"))

	if err := h.probe(ctx, addr); err != nil {
		h.plog.WithError(err).Debugf("probe of %s failed", addr)
		h.console.Println(
			console.S(console.Warning, " Could not connect to %s. ", addr),
			console.S(console.Attention, "Ensure that you have a reverse port forward to %s.\n", addr))
		return nil
	}

	h.console.Printf(" Attempting to attach debugger\n")
	return configure(h.cfg.Host, h.cfg.Port)
}

// probe opens a connection to addr and closes it right away.
func (h *Helper) probe(ctx context.Context, addr string) error {
	d := net.Dialer{Timeout: h.cfg.ProbeTimeout}
	h.plog.Debugf("probing %s (timeout %v)", addr, h.cfg.ProbeTimeout)
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	h.plog.Debugf("%s is reachable from %s", addr, conn.LocalAddr())
	return conn.Close()
}

// Listen starts a debugger that the IDE connects to.
//
// If attaching is enabled or forceNow is set configure is called, the
// operator is told that the IDE can now connect and Listen blocks until
// the debugger has attached, ctx is done or the configured wait timeout
// expires. Nothing is printed if configure fails.
func (h *Helper) Listen(ctx context.Context, configure ConfigureFunc, forceNow bool) error {
	if !h.enabled(forceNow) {
		return nil
	}
	if err := configure(h.cfg.Host, h.cfg.Port); err != nil {
		return err
	}

	addr := h.cfg.Addr()
	h.console.Printf("\n\n")
	h.console.Println(console.S(console.Success, " Now ready for the IDE to connect to the debugger"))
	h.console.Println(
		console.S(console.Attention, " **IMPORTANT** "),
		console.S(console.Normal, "Remote debugger configuration in the IDE can now be run"))
	h.console.Println(console.S(console.Attention, " Ensure that you have a local port forward to %s.\n", addr))

	if h.cfg.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.WaitTimeout)
		defer cancel()
	}
	if err := h.backend.WaitForAttach(ctx, h.pid); err != nil {
		return fmt.Errorf("waiting for the debugger to attach to %d: %w", h.pid, err)
	}
	h.log.Debugf("debugger attached to %d", h.pid)
	return nil
}
