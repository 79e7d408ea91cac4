// Package config loads the kemeny configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/kemeny/config.toml unless
// --config points elsewhere. Every field is optional; missing fields keep
// the values from Default.
//
//	methods = ["dp", "borda", "schulze"]
//	seed = 42
//	timeout = "30s"
//
//	[limits]
//	subset_dp = 18
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//	prefix = "kemeny:"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/cache"
	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/pipeline"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// DefaultAddr is where `kemeny serve` listens by default.
const DefaultAddr = "127.0.0.1:8080"

// DefaultTimeout bounds each method of a run unless the file or --timeout
// says otherwise. Zero in the file disables it.
const DefaultTimeout = 2 * time.Minute

// Config is the decoded configuration file.
type Config struct {
	Methods      []string         `toml:"methods" validate:"omitempty,dive,required"`
	Seed         uint64           `toml:"seed"`
	Restarts     int              `toml:"restarts" validate:"min=0"`
	MaxNoImprove int              `toml:"max_no_improve" validate:"min=0"`
	Workers      int              `toml:"workers" validate:"min=0"`
	Concurrency  int              `toml:"concurrency" validate:"min=0,max=256"`
	Timeout      time.Duration    `toml:"timeout" validate:"min=0"`
	Limits       aggregate.Limits `toml:"limits"`
	Cache        CacheConfig      `toml:"cache"`
	Server       ServerConfig     `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend string            `toml:"backend" validate:"oneof=file redis none"`
	Dir     string            `toml:"dir"`
	TTL     time.Duration     `toml:"ttl" validate:"min=0"`
	Redis   cache.RedisConfig `toml:"redis" validate:"-"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes" validate:"min=0"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Methods: slices.Clone(pipeline.DefaultMethods),
		Seed:    42,
		Timeout: DefaultTimeout,
		Limits:  aggregate.DefaultLimits,
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     cache.DefaultTTL,
			Redis:   cache.RedisConfig{Addr: "localhost:6379", Prefix: "kemeny:"},
		},
		Server: ServerConfig{Addr: DefaultAddr, MaxBodyBytes: 8 << 20},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/kemeny/config.toml, falling back to
// the platform config directory.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, "kemeny", "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kemeny", "config.toml"), nil
}

// Load reads the file at path over Default. An empty path selects
// DefaultPath, and a missing default file is not an error; a missing
// explicit path is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, kerrors.New(kerrors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints, including the Redis settings when the
// redis backend is selected.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "invalid config")
	}
	if c.Cache.Backend == BackendRedis {
		if err := validate.Struct(c.Cache.Redis); err != nil {
			return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "invalid redis config")
		}
	}
	for _, name := range c.Methods {
		if _, ok := aggregate.Canonical(name); !ok {
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "unknown method %q", name)
		}
	}
	return nil
}

// AggregateOptions returns the method options described by c.
func (c Config) AggregateOptions() aggregate.Options {
	limits := c.Limits
	return aggregate.Options{
		Seed:         c.Seed,
		Restarts:     c.Restarts,
		MaxNoImprove: c.MaxNoImprove,
		Workers:      c.Workers,
		Limits:       &limits,
	}
}

// PipelineOptions returns run options for methods, falling back to the
// configured methods when none are given.
func (c Config) PipelineOptions(methods []string) pipeline.Options {
	if len(methods) == 0 {
		methods = c.Methods
	}
	return pipeline.Options{
		Methods:     methods,
		Aggregate:   c.AggregateOptions(),
		Concurrency: c.Concurrency,
		Timeout:     c.Timeout,
		NoCache:     c.Cache.Backend == BackendNone,
	}
}
