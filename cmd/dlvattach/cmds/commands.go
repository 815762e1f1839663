package cmds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-delve/dlvattach/pkg/attach"
	"github.com/go-delve/dlvattach/pkg/backend"
	"github.com/go-delve/dlvattach/pkg/config"
	"github.com/go-delve/dlvattach/pkg/logflags"
	"github.com/go-delve/dlvattach/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// forceNow attaches even if START_DEBUGGER is not set.
	forceNow bool

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf config.Config
)

const dlvattachCommandLongDesc = `dlvattach attaches a running process to the remote debugger of an IDE.

The debugger itself is Delve (dlv) or, failing that, gdbserver; one of them
must be in PATH. The address of the IDE is read from DEBUGGER_HOST and
DEBUGGER_PORT (127.0.0.1:9000 by default), the config file and the flags
below, in increasing order of precedence.

Nothing is attached unless START_DEBUGGER is set or --force is given.`

// New returns an initialized command tree.
func New() *cobra.Command {
	// Config setup and load.
	conf = config.LoadConfig()

	rootCommand = &cobra.Command{
		Use:          "dlvattach",
		Short:        "dlvattach attaches a running process to an IDE's remote debugger.",
		Long:         dlvattachCommandLongDesc,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			conf, err = resolveConfig(conf, os.Getenv, cmd.Flags())
			return err
		},
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (see 'dlvattach help log')`)
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor (see 'dlvattach help log').")
	rootCommand.PersistentFlags().BoolVarP(&forceNow, "force", "f", false, "Attach even if START_DEBUGGER is not set.")
	rootCommand.PersistentFlags().String("host", config.DefaultHost, "Address of the IDE's debugger.")
	rootCommand.PersistentFlags().Int("port", config.DefaultPort, "Port of the IDE's debugger.")
	rootCommand.PersistentFlags().String("backend", "", `Debugger backend, "dlv" or "gdbserver" (default: first one found in PATH).`)
	rootCommand.PersistentFlags().Duration("wait-timeout", 0, "Give up waiting for the IDE after this long (0 waits forever).")
	rootCommand.PersistentFlags().Duration("probe-timeout", 0, "Timeout of the connectivity check (0 uses the system default).")

	// 'reverse' subcommand.
	reverseCommand := &cobra.Command{
		Use:   "reverse [pid]",
		Short: "Attach a process to an IDE that is listening for the debugger.",
		Long: `Checks that the IDE is listening on host:port and starts a Delve DAP server
that connects to it (dlv dap --client-addr). The IDE then attaches to pid.

The remote debugger configuration in the IDE must be running first. If the IDE
can not be reached a warning is printed: when the process runs on another
machine or in a container a reverse port forward to host:port is needed.

If pid is omitted the parent process of dlvattach is used.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(execute(backend.ModeReverse, args))
		},
	}
	rootCommand.AddCommand(reverseCommand)

	// 'listen' subcommand.
	listenCommand := &cobra.Command{
		Use:   "listen [pid]",
		Short: "Attach a debugger to a process and wait for the IDE to connect.",
		Long: `Starts a headless debugger attached to pid and listening on host:port,
then waits until the debugger has taken hold of the process.

With Delve the process stays stopped until the IDE connects and resumes it.
Use --wait-timeout to give up waiting.

If pid is omitted the parent process of dlvattach is used.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(execute(backend.ModeListen, args))
		},
	}
	rootCommand.AddCommand(listenCommand)

	// 'config' subcommand.
	configCommand := &cobra.Command{
		Use:   "config",
		Short: "Prints the effective configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := config.Marshal(conf)
			if err != nil {
				return err
			}
			path, _ := config.GetConfigFilePath("config.yml")
			fmt.Printf("# config file: %s\n%s", path, out)
			return nil
		},
	}
	rootCommand.AddCommand(configCommand)

	// 'version' subcommand.
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dlvattach\n%s\n", version.AttachVersion)
			if log {
				fmt.Println(version.BuildInfo())
			}
		},
	}
	rootCommand.AddCommand(versionCommand)

	rootCommand.AddCommand(&cobra.Command{
		Use:   "log",
		Short: "Help about logging flags.",
		Long: `Logging can be enabled by specifying the --log flag and using the
--log-output flag to select which components should produce logs.

The argument of --log-output must be a comma separated list of component
names selected from this list:


	attach		Log attach decisions (default)
	backend		Log the debugger commands being run
	probe		Log the connectivity check

Additionally --log-dest can be used to specify where the logs should be
written.
If the argument is a number it will be interpreted as a file descriptor,
otherwise as a file path.

`,
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "environment",
		Short: "Help about environment variables.",
		Long: `The following environment variables are read:

	START_DEBUGGER		attach without --force (any value but 0, false, no, off)
	DEBUGGER_HOST		address of the IDE's debugger (127.0.0.1)
	DEBUGGER_PORT		port of the IDE's debugger (9000)
	DEBUGGER_BACKEND	dlv or gdbserver
	DEBUGGER_BACKEND_ARGS	extra arguments for the debugger, split like a shell would
	DEBUGGER_PROBE_TIMEOUT	timeout of the connectivity check (e.g. 2s)
	DEBUGGER_WAIT_TIMEOUT	give up waiting for the IDE after this long (e.g. 5m)

`,
	})

	rootCommand.DisableAutoGenTag = true

	return rootCommand
}

// resolveConfig applies the environment and then the flags that were set
// explicitly on top of base.
func resolveConfig(base config.Config, getenv func(string) string, flags *pflag.FlagSet) (config.Config, error) {
	c, err := config.Overlay(base, getenv)
	if err != nil {
		return base, err
	}
	if flags.Changed("host") {
		c.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		c.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("backend") {
		c.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("wait-timeout") {
		c.WaitTimeout, _ = flags.GetDuration("wait-timeout")
	}
	if flags.Changed("probe-timeout") {
		c.ProbeTimeout, _ = flags.GetDuration("probe-timeout")
	}
	if err := c.Validate(); err != nil {
		return base, err
	}
	return c, nil
}

func parsePid(args []string) (int, error) {
	if len(args) == 0 {
		return os.Getppid(), nil
	}
	pid, err := strconv.Atoi(args[0])
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid: %s", args[0])
	}
	return pid, nil
}

func execute(mode backend.Mode, args []string) int {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer logflags.Close()

	pid, err := parsePid(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	h, err := attach.New(conf, attach.WithPid(pid))
	if err != nil {
		if errors.Is(err, backend.ErrNoBackend) {
			fmt.Fprintf(os.Stderr, "%v\nInstall Delve with: go install github.com/go-delve/delve/cmd/dlv@latest\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	configure, err := h.BackendConfigure(mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	switch mode {
	case backend.ModeReverse:
		err = h.Reverse(ctx, configure, forceNow)
	case backend.ModeListen:
		err = h.Listen(ctx, configure, forceNow)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logflags.AttachLogger().Debugf("%v attach of %d finished in %v", mode, pid, time.Since(start))
	return 0
}
