package config

import (
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	c, err := Overlay(Default(), envFrom(nil))
	if err != nil {
		t.Fatal(err)
	}
	if c.Host != "127.0.0.1" || c.Port != 9000 {
		t.Fatalf("expected 127.0.0.1:9000, got %s", c.Addr())
	}
	if c.StartDebugger {
		t.Fatal("StartDebugger should default to false")
	}
}

func TestOverlay(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		tgt  Config
	}{
		{
			"trigger only",
			map[string]string{EnvStartDebugger: "1"},
			Config{StartDebugger: true, Host: DefaultHost, Port: DefaultPort},
		},
		{
			"trigger false spelling",
			map[string]string{EnvStartDebugger: "False"},
			Config{Host: DefaultHost, Port: DefaultPort},
		},
		{
			"any other value triggers",
			map[string]string{EnvStartDebugger: "please"},
			Config{StartDebugger: true, Host: DefaultHost, Port: DefaultPort},
		},
		{
			"host and port",
			map[string]string{EnvHost: "10.0.0.2", EnvPort: "2345"},
			Config{Host: "10.0.0.2", Port: 2345},
		},
		{
			"backend and args",
			map[string]string{EnvBackend: "dlv", EnvBackendArgs: `--log "--log-output=debugger,rpc"`},
			Config{Host: DefaultHost, Port: DefaultPort, Backend: "dlv", BackendArgs: []string{"--log", "--log-output=debugger,rpc"}},
		},
		{
			"timeouts",
			map[string]string{EnvProbeTimeout: "2s", EnvWaitTimeout: "5m"},
			Config{Host: DefaultHost, Port: DefaultPort, ProbeTimeout: 2 * time.Second, WaitTimeout: 5 * time.Minute},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Overlay(Default(), envFrom(tc.env))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(c, tc.tgt) {
				t.Fatalf("expected %#v, got %#v", tc.tgt, c)
			}
		})
	}
}

func TestOverlayErrors(t *testing.T) {
	testCases := []struct {
		env    map[string]string
		tgterr string
	}{
		{map[string]string{EnvPort: "ninethousand"}, "invalid DEBUGGER_PORT"},
		{map[string]string{EnvPort: "70000"}, "out of range"},
		{map[string]string{EnvWaitTimeout: "forever"}, "invalid DEBUGGER_WAIT_TIMEOUT"},
		{map[string]string{EnvProbeTimeout: "-1s"}, "must not be negative"},
		{map[string]string{EnvBackendArgs: "`whoami`"}, "backtick not supported"},
	}

	for _, tc := range testCases {
		base := Default()
		c, err := Overlay(base, envFrom(tc.env))
		if err == nil {
			t.Errorf("%v: expected error %q", tc.env, tc.tgterr)
			continue
		}
		if !strings.Contains(err.Error(), tc.tgterr) {
			t.Errorf("%v: expected error containing %q, got %q", tc.env, tc.tgterr, err)
		}
		if !reflect.DeepEqual(c, base) {
			t.Errorf("%v: base configuration should be returned on error, got %#v", tc.env, c)
		}
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte("start-debugger: true\nport: 2345\nbackend: gdbserver\nwait-timeout: 30s\n"))
	if err != nil {
		t.Fatal(err)
	}
	tgt := Config{StartDebugger: true, Host: DefaultHost, Port: 2345, Backend: "gdbserver", WaitTimeout: 30 * time.Second}
	if !reflect.DeepEqual(c, tgt) {
		t.Fatalf("expected %#v, got %#v", tgt, c)
	}

	if _, err := Parse([]byte("port: 0\n")); err == nil {
		t.Fatal("expected error for port 0")
	}
}

func TestDefaultConfigFileParses(t *testing.T) {
	f, err := createDefaultConfig(t.TempDir() + "/config.yml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, f); err != nil {
		t.Fatal(err)
	}
	c, err := Parse([]byte(buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, Default()) {
		t.Fatalf("default config file should decode to the defaults, got %#v", c)
	}
}
