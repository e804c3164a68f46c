package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-srtsplit/internal/segment"
)

// Config keys.
const (
	KeyFFmpegPath = "ffmpeg-path"
	KeyPadding    = "padding"
	KeyWorkers    = "workers"
	KeyOnError    = "on-error"
	KeyLogLevel   = "log-level"
)

// Environment variable fallbacks.
const (
	EnvFFmpegPath = "SRTSPLIT_FFMPEG_PATH"
	EnvPadding    = "SRTSPLIT_PADDING"
	EnvWorkers    = "SRTSPLIT_WORKERS"
	EnvOnError    = "SRTSPLIT_ON_ERROR"
	EnvLogLevel   = "SRTSPLIT_LOG_LEVEL"
)

// appName names the directory under the user config dir.
const appName = "go-srtsplit"

// envByKey maps each key to its environment fallback.
var envByKey = map[string]string{
	KeyFFmpegPath: EnvFFmpegPath,
	KeyPadding:    EnvPadding,
	KeyWorkers:    EnvWorkers,
	KeyOnError:    EnvOnError,
	KeyLogLevel:   EnvLogLevel,
}

// Config holds user configuration loaded from ~/.config/go-srtsplit/config.
// Values are kept as written; an empty field means unset.
type Config struct {
	FFmpegPath string
	Padding    string
	Workers    string
	OnError    string
	LogLevel   string
}

// Keys returns the supported keys in alphabetical order.
func Keys() []string {
	return slices.Sorted(maps.Keys(envByKey))
}

// IsValidKey reports whether key is supported.
func IsValidKey(key string) bool {
	_, ok := envByKey[key]
	return ok
}

// EnvFor returns the environment fallback for key, or "" if key is unknown.
func EnvFor(key string) string {
	return envByKey[key]
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-srtsplit.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	return path()
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
func Load() (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	get := func(key string) string {
		if v := data[key]; v != "" {
			return v
		}
		return os.Getenv(envByKey[key])
	}

	cfg.FFmpegPath = get(KeyFFmpegPath)
	cfg.Padding = get(KeyPadding)
	cfg.Workers = get(KeyWorkers)
	cfg.OnError = get(KeyOnError)
	cfg.LogLevel = get(KeyLogLevel)
	return cfg, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save validates and writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	if err := ValidateValue(key, value); err != nil {
		return err
	}

	p, err := path()
	if err != nil {
		return err
	}

	d := filepath.Dir(p)
	if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, key := range slices.Sorted(maps.Keys(data)) {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// ValidateValue checks that value parses for key.
func ValidateValue(key, value string) error {
	if !IsValidKey(key) {
		return fmt.Errorf("%w: %q (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w for %s: value cannot span lines", ErrInvalidValue, key)
	}

	var err error
	switch key {
	case KeyFFmpegPath:
		if strings.TrimSpace(value) == "" {
			err = errors.New("path cannot be empty")
		}
	case KeyPadding:
		_, err = ParsePadding(value)
	case KeyWorkers:
		_, err = ParseWorkers(value)
	case KeyOnError:
		_, err = segment.ParsePolicy(value)
	case KeyLogLevel:
		_, err = ParseLogLevel(value)
	}
	if err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidValue, key, err)
	}
	return nil
}

// ParsePadding parses a Go duration ("500ms", "1.5s") or a bare number of
// milliseconds ("500"). Negative values are rejected.
func ParsePadding(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var d time.Duration
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		d = time.Duration(ms) * time.Millisecond
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid padding %q: use e.g. 500ms or 500", s)
		}
	}
	if d < 0 {
		return 0, fmt.Errorf("padding cannot be negative: %s", s)
	}
	return d, nil
}

// ParseWorkers parses a positive worker count.
func ParseWorkers(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("workers must be a positive integer, got %q", s)
	}
	return n, nil
}

// ParseLogLevel parses debug, info, warn, or error (case-insensitive).
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: use debug, info, warn, or error", s)
	}
	return level, nil
}

// EnsureInputDir checks that d is an existing, writable directory and
// returns it with ~ expanded. Clips are written inside it.
func EnsureInputDir(d string) (string, error) {
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrDirNotFound, d)
		}
		return "", fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, d)
	}

	// Check if writable by attempting to create a temp file.
	f, err := os.CreateTemp(d, ".go-srtsplit-write-test-*")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotWritable, d, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name) // Best effort cleanup, ignore error

	return d, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
