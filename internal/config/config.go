// Package config loads cardspace settings from defaults, an optional config
// file and CARDSPACE_* environment variables.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/cardspace/pkg/catalog"
	"github.com/matzehuels/cardspace/pkg/engine"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/persist"
)

// EnvPrefix prefixes every environment override, e.g. CARDSPACE_SERVER_ADDR.
const EnvPrefix = "CARDSPACE"

// Name is the config file base name; toml, yaml and json are accepted.
const Name = "cardspace"

// Config is the resolved configuration.
type Config struct {
	Data    string        `mapstructure:"data"`
	Catalog string        `mapstructure:"catalog"`
	Persist PersistConfig `mapstructure:"persist"`
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`

	// File is the config file that was read, or empty.
	File string `mapstructure:"-"`
}

// PersistConfig selects storage backends.
type PersistConfig struct {
	Backends []string `mapstructure:"backends"`
	Key      string   `mapstructure:"key"`
	Disk     struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"disk"`
	Redis  persist.RedisConfig `mapstructure:"redis"`
	Mongo  persist.MongoConfig `mapstructure:"mongo"`
	SQLite struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"sqlite"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string        `mapstructure:"addr"`
	Tick time.Duration `mapstructure:"tick"`
}

// EngineConfig holds the engine tunables.
type EngineConfig struct {
	NearField float64       `mapstructure:"near_field"`
	Duration  time.Duration `mapstructure:"duration"`
	HideDelay time.Duration `mapstructure:"hide_delay"`
	DepthStep float64       `mapstructure:"depth_step"`
	LOD       bool          `mapstructure:"lod"`
	Viewport  struct {
		Width  float64 `mapstructure:"width"`
		Height float64 `mapstructure:"height"`
	} `mapstructure:"viewport"`
}

func setDefaults(v *viper.Viper) {
	def := engine.DefaultConfig()

	v.SetDefault("data", "cards.json")
	v.SetDefault("catalog", "")

	v.SetDefault("persist.backends", []string{"disk"})
	v.SetDefault("persist.key", persist.DefaultKey)
	v.SetDefault("persist.disk.dir", defaultDataDir())
	v.SetDefault("persist.redis.addr", "localhost:6379")
	v.SetDefault("persist.redis.password", "")
	v.SetDefault("persist.redis.db", 0)
	v.SetDefault("persist.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("persist.mongo.database", "cardspace")
	v.SetDefault("persist.mongo.collection", "datasets")
	v.SetDefault("persist.sqlite.path", filepath.Join(defaultDataDir(), "cardspace.db"))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.tick", time.Second/60)

	v.SetDefault("engine.near_field", def.NearField)
	v.SetDefault("engine.duration", def.Duration)
	v.SetDefault("engine.hide_delay", def.HideDelay)
	v.SetDefault("engine.depth_step", def.DepthStep)
	v.SetDefault("engine.lod", def.LOD)
	v.SetDefault("engine.viewport.width", def.Width)
	v.SetDefault("engine.viewport.height", def.Height)
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "cardspace")
	}
	return ".cardspace"
}

func searchPaths() []string {
	paths := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "cardspace"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cardspace"))
	}
	return paths
}

// Load resolves the configuration. An explicit file must exist; without one
// the search paths are tried and a missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		for _, p := range searchPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	// Lists from the environment arrive as one comma-separated string.
	cfg.Persist.Backends = splitList(cfg.Persist.Backends)
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Engine.NearField <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "engine.near_field must be positive")
	case c.Engine.Duration < 0 || c.Engine.HideDelay < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "engine durations must not be negative")
	case c.Engine.Viewport.Width <= 0 || c.Engine.Viewport.Height <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "engine.viewport must be positive")
	case c.Server.Tick <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "server.tick must be positive")
	}
	return nil
}

// EngineConfig returns the engine tunables, keeping defaults for values the
// configuration does not cover.
func (c *Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.NearField = c.Engine.NearField
	cfg.Duration = c.Engine.Duration
	cfg.HideDelay = c.Engine.HideDelay
	cfg.DepthStep = c.Engine.DepthStep
	cfg.LOD = c.Engine.LOD
	cfg.Width = c.Engine.Viewport.Width
	cfg.Height = c.Engine.Viewport.Height
	return cfg
}

// PersistConfig returns the backend selection for [persist.Open].
func (c *Config) PersistConfig() persist.Config {
	return persist.Config{
		Backends: c.Persist.Backends,
		DiskDir:  c.Persist.Disk.Dir,
		Redis:    c.Persist.Redis,
		Mongo:    c.Persist.Mongo,
		SQLite:   c.Persist.SQLite.Path,
	}
}

// LoadCatalog returns the configured catalog override, or the embedded one.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if c.Catalog == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(c.Catalog)
}
