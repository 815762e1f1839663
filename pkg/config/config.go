package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"os/user"
	"path"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configDir  string = ".dlvattach"
	configFile string = "config.yml"
)

const (
	// DefaultHost is the address of the IDE's debugger when DEBUGGER_HOST
	// is not set.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the port of the IDE's debugger when DEBUGGER_PORT is
	// not set.
	DefaultPort = 9000
)

// Config holds every setting that decides whether and where a debugger is
// attached. A Config is built once at startup and passed by value.
type Config struct {
	// StartDebugger enables attaching without an explicit request from
	// the caller.
	StartDebugger bool `yaml:"start-debugger"`
	// Host is the network address of the IDE's debugger.
	Host string `yaml:"host"`
	// Port is the TCP port of the IDE's debugger.
	Port int `yaml:"port"`

	// Backend selects a debugger backend by name ("dlv", "gdbserver"). If
	// empty the first backend found is used.
	Backend string `yaml:"backend,omitempty"`
	// BackendArgs are appended to the command line of the backend.
	BackendArgs []string `yaml:"backend-args,omitempty"`

	// ProbeTimeout bounds the connectivity probe, zero means the platform
	// default.
	ProbeTimeout time.Duration `yaml:"probe-timeout,omitempty"`
	// WaitTimeout bounds the wait for the IDE to attach, zero means wait
	// forever.
	WaitTimeout time.Duration `yaml:"wait-timeout,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{Host: DefaultHost, Port: DefaultPort}
}

// Addr returns the host:port pair of the IDE's debugger.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoadConfig attempts to populate a Config object from the config.yml file,
// starting from Default. Errors are reported on stdout and the defaults
// are returned.
func LoadConfig() Config {
	err := createConfigPath()
	if err != nil {
		fmt.Printf("Could not create config directory: %v.", err)
		return Default()
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Printf("Unable to get config file path: %v.", err)
		return Default()
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			fmt.Printf("Error creating default config file: %v", err)
			return Default()
		}
	}
	defer func() {
		err := f.Close()
		if err != nil {
			fmt.Printf("Closing config file failed: %v.", err)
		}
	}()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		fmt.Printf("Unable to read config data: %v.", err)
		return Default()
	}

	c, err := Parse(data)
	if err != nil {
		fmt.Printf("Unable to decode config file: %v.", err)
		return Default()
	}
	return c
}

// Parse decodes a YAML document on top of Default.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Default(), err
	}
	if err := c.Validate(); err != nil {
		return Default(), err
	}
	return c, nil
}

// Marshal encodes c as YAML.
func Marshal(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks that c describes a usable address.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("debugger host must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("debugger port %d out of range", c.Port)
	}
	if c.ProbeTimeout < 0 || c.WaitTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func createDefaultConfig(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %v", err)
	}
	err = writeDefaultConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to write default configuration: %v", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	return f, nil
}

func writeDefaultConfig(f *os.File) error {
	_, err := f.WriteString(
		`# Configuration file for dlvattach.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.
# Environment variables (START_DEBUGGER, DEBUGGER_HOST, DEBUGGER_PORT, ...)
# take precedence over this file.

# Attach without being asked explicitly.
# start-debugger: true

# Address of the IDE's debugger.
# host: 127.0.0.1
# port: 9000

# Debugger backend to use, "dlv" or "gdbserver". The first one found in PATH
# is used if unset.
# backend: dlv

# Extra arguments for the backend command line.
# backend-args: ["--log"]

# Bound the connectivity probe and the wait for the IDE to attach.
# probe-timeout: 2s
# wait-timeout: 5m
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	userHomeDir := "."
	usr, err := user.Current()
	if err == nil {
		userHomeDir = usr.HomeDir
	}
	return path.Join(userHomeDir, configDir, file), nil
}
