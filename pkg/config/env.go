package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cosiner/argv"
)

// Environment variables read by FromEnv.
const (
	EnvStartDebugger = "START_DEBUGGER"
	EnvHost          = "DEBUGGER_HOST"
	EnvPort          = "DEBUGGER_PORT"
	EnvBackend       = "DEBUGGER_BACKEND"
	EnvBackendArgs   = "DEBUGGER_BACKEND_ARGS"
	EnvProbeTimeout  = "DEBUGGER_PROBE_TIMEOUT"
	EnvWaitTimeout   = "DEBUGGER_WAIT_TIMEOUT"
)

// FromEnv overlays the process environment on top of base.
func FromEnv(base Config) (Config, error) {
	return Overlay(base, os.Getenv)
}

// Overlay returns base with every variable that getenv reports as
// non-empty applied on top of it.
func Overlay(base Config, getenv func(string) string) (Config, error) {
	c := base
	if v := getenv(EnvStartDebugger); v != "" {
		c.StartDebugger = truthy(v)
	}
	if v := getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return base, fmt.Errorf("invalid %s %q: %v", EnvPort, v, err)
		}
		c.Port = port
	}
	if v := getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := getenv(EnvBackendArgs); v != "" {
		args, err := SplitArgs(v)
		if err != nil {
			return base, fmt.Errorf("invalid %s: %v", EnvBackendArgs, err)
		}
		c.BackendArgs = args
	}
	for _, d := range []struct {
		name string
		dst  *time.Duration
	}{
		{EnvProbeTimeout, &c.ProbeTimeout},
		{EnvWaitTimeout, &c.WaitTimeout},
	} {
		v := getenv(d.name)
		if v == "" {
			continue
		}
		t, err := time.ParseDuration(v)
		if err != nil {
			return base, fmt.Errorf("invalid %s %q: %v", d.name, v, err)
		}
		*d.dst = t
	}
	if err := c.Validate(); err != nil {
		return base, err
	}
	return c, nil
}

// truthy treats every non-empty value as true except the usual spellings
// of false.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// SplitArgs splits a command line the way a shell would, without
// expanding anything.
func SplitArgs(cmdline string) ([]string, error) {
	v, err := argv.Argv(cmdline,
		func(s string) (string, error) {
			return "", fmt.Errorf("backtick not supported in '%s'", s)
		},
		nil)
	if err != nil {
		return nil, err
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("illegal command line '%s'", cmdline)
	}
	return v[0], nil
}
