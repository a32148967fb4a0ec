// Package config loads stylefx settings from a configuration file, the
// environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/internal/ruleset"
)

// EnvPrefix prefixes every environment variable stylefx reads.
const EnvPrefix = "STYLEFX"

// FileNames are the configuration files looked up in the working
// directory, in order.
var FileNames = []string{".stylefx.yaml", ".stylefx.yml", ".stylefx.toml", ".stylefx.json"}

// DefaultRules is used when no configuration names any rule.
var DefaultRules = ruleset.Fragment{{Name: ruleset.PresetStandard, Value: ruleset.Enabled()}}

// FinderConfig selects the files of a run.
type FinderConfig struct {
	Paths          []string `mapstructure:"paths"`
	Include        []string `mapstructure:"include"`
	Exclude        []string `mapstructure:"exclude"`
	MaxDepth       int      `mapstructure:"max_depth"`
	FollowSymlinks bool     `mapstructure:"follow_symlinks"`
	NoGitignore    bool     `mapstructure:"no_gitignore"`
}

// Config holds the application's configuration.
type Config struct {
	RiskyAllowed  bool         `mapstructure:"risky_allowed"`
	Workers       int          `mapstructure:"workers"`
	MaxIterations int          `mapstructure:"max_iterations"`
	UsingCache    bool         `mapstructure:"using_cache"`
	CacheFile     string       `mapstructure:"cache_file"`
	CacheDSN      string       `mapstructure:"cache_dsn"`
	Language      string       `mapstructure:"language"`
	LogLevel      string       `mapstructure:"log_level"`
	Finder        FinderConfig `mapstructure:"finder"`

	// File is the configuration file that was read, empty when none was.
	File string `mapstructure:"-"`
	// Rules is the rules section of File, in source order.
	Rules ruleset.Fragment `mapstructure:"-"`
	// InlineRules come from the command line and override Rules.
	InlineRules ruleset.Fragment `mapstructure:"-"`
	// Presets are the user presets declared in File.
	Presets []ruleset.Preset `mapstructure:"-"`
}

// LoadOptions tells Load where to look.
type LoadOptions struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// File is an explicit configuration file. It must exist.
	File string
	// Flags override file and environment settings when changed.
	Flags *pflag.FlagSet
	// InlineRules is a JSON rules object appended after the file's rules.
	InlineRules string
}

// flagKeys maps command line flags onto setting keys.
var flagKeys = map[string]string{
	"allow-risky":    "risky_allowed",
	"workers":        "workers",
	"max-iterations": "max_iterations",
	"using-cache":    "using_cache",
	"cache-file":     "cache_file",
	"cache-dsn":      "cache_dsn",
	"language":       "language",
	"log-level":      "log_level",
	"include":        "finder.include",
	"exclude":        "finder.exclude",
	"max-depth":      "finder.max_depth",
	"follow-links":   "finder.follow_symlinks",
	"no-gitignore":   "finder.no_gitignore",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("risky_allowed", false)
	v.SetDefault("workers", 0)
	v.SetDefault("max_iterations", 10)
	v.SetDefault("using_cache", true)
	v.SetDefault("cache_file", ".stylefx.cache")
	v.SetDefault("cache_dsn", "")
	v.SetDefault("language", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("finder.paths", []string{"."})
	v.SetDefault("finder.include", []string{})
	v.SetDefault("finder.exclude", []string{})
	v.SetDefault("finder.max_depth", 0)
	v.SetDefault("finder.follow_symlinks", false)
	v.SetDefault("finder.no_gitignore", false)
}

// Load reads .env, then the configuration file, the STYLEFX_ environment
// and finally the changed flags, each overriding the previous one. Every
// error wraps model.ErrInvalidConfig.
func Load(opts LoadOptions) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, model.Wrap(model.ErrInvalidConfig, ".env", "", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file, err := findFile(dir, opts.File)
	if err != nil {
		return nil, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, model.Wrap(model.ErrInvalidConfig, file, "", err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, model.Wrap(model.ErrInvalidConfig, "", "flag "+name, err)
				}
			}
		}
	}

	cfg := &Config{File: file}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, model.Wrap(model.ErrInvalidConfig, file, "", err)
	}

	if file != "" {
		if err := cfg.readRules(file); err != nil {
			return nil, err
		}
	}
	if opts.InlineRules != "" {
		inline, err := ruleset.ParseJSON([]byte(opts.InlineRules))
		if err != nil {
			return nil, model.Wrap(model.ErrInvalidConfig, "", "--rules", err)
		}
		cfg.InlineRules = inline
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges of numeric settings.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 0:
		return model.Errorf(model.ErrInvalidConfig, c.File, "workers must not be negative, got %d", c.Workers)
	case c.MaxIterations < 0:
		return model.Errorf(model.ErrInvalidConfig, c.File, "max_iterations must not be negative, got %d", c.MaxIterations)
	case c.Finder.MaxDepth < 0:
		return model.Errorf(model.ErrInvalidConfig, c.File, "finder.max_depth must not be negative, got %d", c.Finder.MaxDepth)
	}
	return nil
}

// Fragments returns the rule fragments to resolve, in override order.
func (c *Config) Fragments() []ruleset.Fragment {
	var out []ruleset.Fragment
	if len(c.Rules) > 0 {
		out = append(out, c.Rules)
	}
	if len(c.InlineRules) > 0 {
		out = append(out, c.InlineRules)
	}
	if len(out) == 0 {
		out = append(out, DefaultRules)
	}
	return out
}

// Resolver returns the built-in presets plus the presets of the
// configuration file.
func (c *Config) Resolver() (*ruleset.Resolver, error) {
	r := ruleset.NewDefaultResolver()
	for _, p := range c.Presets {
		if err := r.Register(p.Name, p.Definition); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Resolve registers the user presets and resolves the rule fragments.
func (c *Config) Resolve() (ruleset.Resolved, error) {
	r, err := c.Resolver()
	if err != nil {
		return nil, err
	}
	return r.Resolve(c.Fragments()...)
}

func (c *Config) readRules(file string) error {
	format, ok := ruleset.FormatForPath(file)
	if !ok {
		return model.Errorf(model.ErrInvalidConfig, file, "unsupported configuration format")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return model.Wrap(model.ErrInvalidConfig, file, "", err)
	}
	doc, err := ruleset.ParseDocument(format, data)
	if err != nil {
		return withFile(err, file)
	}
	c.Rules = doc.Rules
	c.Presets = doc.Presets
	return nil
}

// findFile returns explicit when set, else the first of FileNames in dir,
// else an empty string.
func findFile(dir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", model.Wrap(model.ErrInvalidConfig, explicit, "", err)
		}
		return explicit, nil
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

// loadDotEnv loads path into the environment without overriding
// variables that are already set. A missing file is fine.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func withFile(err error, file string) error {
	var merr *model.Error
	if errors.As(err, &merr) && merr.Path == "" {
		copied := *merr
		copied.Path = file
		return &copied
	}
	return err
}
