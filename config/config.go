package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	MinPort = 1
	MaxPort = 65535

	BackendGopsutil = "gopsutil"
	BackendShell    = "shell"

	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

var (
	ErrMissingPort = errors.New("missing port argument")
	ErrExtraArgs   = errors.New("exactly one port argument expected")
	ErrInvalidPort = errors.New("port must be an integer between 1 and 65535")
)

// Config holds the server settings
type Config struct {
	Port           int
	SampleDelay    time.Duration
	Backend        string
	CommandTimeout time.Duration
	ReadTimeout    time.Duration
	StrictMethod   bool
	LogLevel       string
	LogFormat      string

	// EnvFileLoaded reports whether a .env file was found
	EnvFileLoaded bool
}

// Load reads the port from the positional args and the rest from the environment.
// args excludes the program name.
func Load(args []string) (*Config, error) {
	switch {
	case len(args) < 1:
		return nil, ErrMissingPort
	case len(args) > 1:
		return nil, fmt.Errorf("%w: got %q", ErrExtraArgs, args)
	}
	port, err := ParsePort(args[0])
	if err != nil {
		return nil, err
	}

	// Try .env first, plain environment otherwise
	loaded := godotenv.Load() == nil

	cfg := &Config{
		Port:           port,
		SampleDelay:    getDuration("DIAGD_SAMPLE_DELAY", 500*time.Millisecond),
		Backend:        getBackend("DIAGD_BACKEND", BackendGopsutil),
		CommandTimeout: getDuration("DIAGD_COMMAND_TIMEOUT", 2*time.Second),
		ReadTimeout:    getDuration("DIAGD_READ_TIMEOUT", 0),
		StrictMethod:   getBool("DIAGD_STRICT_METHOD", false),
		LogLevel:       getLogLevel("DIAGD_LOG_LEVEL", "info"),
		LogFormat:      getLogFormat("DIAGD_LOG_FORMAT", LogFormatConsole),
		EnvFileLoaded:  loaded,
	}
	return cfg, nil
}

// ParsePort validates a decimal TCP port in [1, 65535]
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}
	if port < MinPort || port > MaxPort {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	return port, nil
}

// getEnv reads a trimmed env value with fallback
func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getBackend(key, fallback string) string {
	switch v := strings.ToLower(getEnv(key, fallback)); v {
	case BackendGopsutil, BackendShell:
		return v
	default:
		return fallback
	}
}

func getLogLevel(key, fallback string) string {
	v := strings.ToLower(getEnv(key, fallback))
	if _, err := zapcore.ParseLevel(v); err != nil {
		return fallback
	}
	return v
}

func getLogFormat(key, fallback string) string {
	switch v := strings.ToLower(getEnv(key, fallback)); v {
	case LogFormatJSON, LogFormatConsole:
		return v
	default:
		return fallback
	}
}
