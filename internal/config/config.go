// Package config carries process-wide toggles and host-supplied
// configuration. It holds no core language state; it exists so the rest of
// the module has one place to ask "are we in test/LSP mode" and "what does
// the host's melbi.yaml say", the way the teacher's internal/config does.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceFileExt is the canonical melbi source extension.
const SourceFileExt = ".mb"

// SourceFileExtensions are all extensions editor integrations should
// recognize, per spec.md §6.3.
var SourceFileExtensions = []string{".mb", ".melbi"}

// TrimSourceExt removes a recognized source extension, if present.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt reports whether path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode normalizes type-variable display names (t1, t2, ... -> t?) for
// deterministic golden output. Set once by test binaries.
var IsTestMode = false

// IsLSPMode normalizes display the same way IsTestMode does, for hover/
// completions responses where a human reads the type, not a diff tool.
var IsLSPMode = false

// Level is a structured-logging severity, matching the levels a host's sink
// (spec.md §6.4) is expected to understand.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// Field is one key-value pair in a structured log record.
type Field struct {
	Key   string
	Value interface{}
}

// Logger is the structured sink a host may install. The core never writes
// to stdout/stderr/files itself (spec.md §6.4); NopLogger is the default.
type Logger interface {
	Log(level Level, target string, fields ...Field)
}

type nopLogger struct{}

func (nopLogger) Log(Level, string, ...Field) {}

// NopLogger discards everything. It is the default Logger until a host
// installs its own via pkg/melbi's New(WithLogger(...)).
var NopLogger Logger = nopLogger{}

// Limits bounds a single evaluation, per spec.md §5 "Resource bounds".
type Limits struct {
	MaxCallDepth   int `yaml:"max_call_depth"`
	MaxValueBytes  int `yaml:"max_value_bytes"`
	MaxInstructions int `yaml:"max_instructions"`
}

// DefaultLimits mirrors conservative defaults a host would otherwise have to
// invent from scratch; they are generous enough for typical filter/rule
// expressions and cheap enough to guard a shared evaluation worker pool.
func DefaultLimits() Limits {
	return Limits{
		MaxCallDepth:    512,
		MaxValueBytes:   16 << 20,
		MaxInstructions: 10_000_000,
	}
}

// HostConfig is the optional YAML-loadable configuration a host may check
// into its own repository (e.g. melbi.yaml) describing default resource
// limits. It is entirely optional — pkg/melbi also accepts a Limits struct
// built directly in Go.
type HostConfig struct {
	Limits Limits `yaml:"limits"`
}

// LoadHostConfig reads and parses a YAML host-configuration file.
func LoadHostConfig(path string) (HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HostConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := HostConfig{Limits: DefaultLimits()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return HostConfig{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
