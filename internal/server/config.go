package server

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/photogrid/pkg/cache"
	"github.com/matzehuels/photogrid/pkg/errors"
	"github.com/matzehuels/photogrid/pkg/pipeline"
	"github.com/matzehuels/photogrid/pkg/session"
)

// Backend names accepted by Config.Store and Config.Cache.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Defaults.
const (
	DefaultAddr            = ":8501"
	DefaultMaxUploadBytes  = 32 << 20
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 2 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	DefaultJanitorInterval = time.Minute
)

// Config configures `photogrid serve`. It is loaded from TOML:
//
//	addr = ":8080"
//	store = "redis"
//	session_ttl = "12h"
//
//	[redis]
//	addr = "redis:6379"
//
//	[grid]
//	background = "#f4f1ea"
//	fonts = ["Inter-Regular.ttf"]
type Config struct {
	Addr            string        `toml:"addr"`
	MaxUploadBytes  int64         `toml:"max_upload_bytes"`
	SessionTTL      time.Duration `toml:"session_ttl"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	JanitorInterval time.Duration `toml:"janitor_interval"`

	// Store selects the session backend: memory, file or redis.
	Store      string `toml:"store"`
	SessionDir string `toml:"session_dir"`

	// Cache selects the result cache: none, file or redis.
	Cache    string `toml:"cache"`
	CacheDir string `toml:"cache_dir"`

	Redis cache.RedisConfig `toml:"redis"`

	// Grid holds the composition settings. Columns is chosen per session.
	Grid pipeline.Options `toml:"grid"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr:            DefaultAddr,
		MaxUploadBytes:  DefaultMaxUploadBytes,
		SessionTTL:      session.DefaultTTL,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		JanitorInterval: DefaultJanitorInterval,
		Store:           BackendMemory,
		Cache:           BackendNone,
	}
}

// LoadConfig reads path on top of DefaultConfig. Unknown keys are an error
// so that typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, cfg.Validate()
}

// Validate fills zero values with defaults and checks the backends and grid
// options.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = def.MaxUploadBytes
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = def.SessionTTL
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = def.IdleTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.JanitorInterval <= 0 {
		c.JanitorInterval = def.JanitorInterval
	}
	if c.Store == "" {
		c.Store = def.Store
	}
	if c.Cache == "" {
		c.Cache = def.Cache
	}

	switch c.Store {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeConfig, "unknown session store %q (want memory, file or redis)", c.Store)
	}
	switch c.Cache {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeConfig, "unknown cache %q (want none, file or redis)", c.Cache)
	}
	if c.Cache == BackendFile && c.CacheDir == "" {
		return errors.New(errors.ErrCodeConfig, "cache_dir is required for the file cache")
	}
	return c.Grid.ValidateAndSetDefaults()
}

func (c *Config) usesRedis() bool {
	return c.Store == BackendRedis || c.Cache == BackendRedis
}
