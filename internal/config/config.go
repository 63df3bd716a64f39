// Package config loads slotbench settings.
//
// Sources are merged with priority: Overrides (flags) > Env > File > Default.
// Environment variables use the SLOTBENCH_ prefix; the first underscore
// after the prefix separates the section from the key, so
// SLOTBENCH_BENCH_OPS_PER_WORKER sets bench.ops_per_worker. Comma-separated
// values become lists.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "SLOTBENCH_"

// Default configuration values.
const (
	DefaultOpsPerWorker = 1_000_000
	DefaultSeed         = 1
	DefaultSlots        = 2
	DefaultLogLevel     = "info"
)

// DefaultThreads are the worker counts of the built-in suite.
var DefaultThreads = []int{1, 2, 3}

// Config is the root configuration.
type Config struct {
	Bench   BenchSection   `koanf:"bench"`
	Results ResultsSection `koanf:"results"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// BenchSection configures trace generation and runs.
type BenchSection struct {
	OpsPerWorker int    `koanf:"ops_per_worker"`
	Threads      []int  `koanf:"threads"`
	Seed         uint64 `koanf:"seed"`
	Slots        int    `koanf:"slots"`

	// TraceDir, when set, makes the suite write traces there and replay
	// them from disk.
	TraceDir string `koanf:"trace_dir"`

	// MaxWorkers caps any single run. Zero means no cap.
	MaxWorkers int `koanf:"max_workers"`
}

// ResultsSection configures the SQLite results log.
type ResultsSection struct {
	// Database is the log path. Empty disables recording.
	Database string `koanf:"database"`
}

// MetricsSection configures Prometheus output.
type MetricsSection struct {
	// Textfile is written in the node_exporter textfile format after a
	// suite. Empty disables it.
	Textfile string `koanf:"textfile"`
}

// LogSection configures logging.
type LogSection struct {
	Level string `koanf:"level"`
}

// defaults returns the flat default key set.
func defaults() map[string]any {
	return map[string]any{
		"bench.ops_per_worker": DefaultOpsPerWorker,
		"bench.threads":        append([]int(nil), DefaultThreads...),
		"bench.seed":           DefaultSeed,
		"bench.slots":          DefaultSlots,
		"bench.trace_dir":      "",
		"bench.max_workers":    0,
		"results.database":     "",
		"metrics.textfile":     "",
		"log.level":            DefaultLogLevel,
	}
}

// Loader merges configuration sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	overrides map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides sets flat dotted keys applied last, typically from flags.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		l.overrides = values
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges every source, validates, and returns the result.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadMap(defaults()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
	}

	if err := l.k.Load(env.ProviderWithValue(l.envPrefix, ".", l.envValue), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if len(l.overrides) > 0 {
		if err := l.loadMap(l.overrides); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is NewLoader(opts...).Load().
func Load(opts ...Option) (*Config, error) {
	return NewLoader(opts...).Load()
}

// envValue maps SLOTBENCH_SECTION_KEY to section.key and splits lists.
func (l *Loader) envValue(name, value string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(name, l.envPrefix))
	key = strings.Replace(key, "_", ".", 1)

	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}
	return key, value
}

func (l *Loader) loadMap(flat map[string]any) error {
	return l.k.Load(mapProvider(maps.Unflatten(flat, ".")), nil)
}

// mapProvider is a koanf provider over an in-memory map.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}

// Verify validates the configuration.
func (c *Config) Verify() error {
	b := &c.Bench
	if b.OpsPerWorker < 0 {
		return errors.New("bench.ops_per_worker must be non-negative")
	}
	if len(b.Threads) == 0 {
		return errors.New("bench.threads must list at least one worker count")
	}
	for _, n := range b.Threads {
		if n < 1 {
			return fmt.Errorf("bench.threads: worker count must be at least 1, got %d", n)
		}
	}
	if b.Slots < 1 {
		return errors.New("bench.slots must be at least 1")
	}
	if b.MaxWorkers < 0 {
		return errors.New("bench.max_workers must be non-negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
