package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	appName  = "linolayout"
	fileName = "config.yaml"
)

var themes = map[string]bool{"latte": true, "frappe": true, "macchiato": true, "mocha": true}

type Config struct {
	Theme    string        `yaml:"theme"`
	LogLevel string        `yaml:"log_level"`
	Catalogs []string      `yaml:"catalogs"`
	Web      WebConfig     `yaml:"web"`
	Tracing  TracingConfig `yaml:"tracing"`
	// Roles are the roles of the local user when rendering the dashboard.
	Roles []string `yaml:"roles"`

	dir string
}

type WebConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// TracingConfig enables OTLP/HTTP trace export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

func DefaultConfig() Config {
	return Config{
		Theme:    "mocha",
		LogLevel: "info",
		Web:      WebConfig{Bind: "127.0.0.1"},
		Tracing:  TracingConfig{ServiceName: appName},
	}
}

// Load reads config.yaml from the default config directory.
func Load() (Config, error) {
	return LoadFromDir(DefaultDir())
}

// LoadFromDir reads config.yaml from dir. Relative catalog paths resolve
// against dir.
func LoadFromDir(dir string) (Config, error) {
	cfg, err := LoadFrom(filepath.Join(dir, fileName))
	cfg.dir = dir
	return cfg, err
}

// LoadFrom reads the file at path. A missing file yields the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	cfg.dir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		def := DefaultConfig()
		def.dir = cfg.dir
		return def, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = appName
	}
	return cfg, nil
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if !themes[c.Theme] {
		errs = append(errs, fmt.Errorf("unknown theme %q (want latte, frappe, macchiato or mocha)", c.Theme))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web.port %d out of range", c.Web.Port))
	}
	return errors.Join(errs...)
}

// Dir returns the directory the configuration was loaded from.
func (c *Config) Dir() string {
	return c.dir
}

// ResolveCatalogs expands "~" and makes catalog paths absolute.
func (c *Config) ResolveCatalogs() []string {
	paths := make([]string, 0, len(c.Catalogs))
	for _, p := range c.Catalogs {
		paths = append(paths, c.resolvePath(p))
	}
	return paths
}

func (c *Config) resolvePath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) && c.dir != "" {
		p = filepath.Join(c.dir, p)
	}
	return filepath.Clean(p)
}

// DefaultDir is $XDG_CONFIG_HOME/linolayout or ~/.config/linolayout.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// ResolveDir returns dir or the default config directory when dir is empty.
func ResolveDir(dir string) string {
	if dir != "" {
		return dir
	}
	return DefaultDir()
}
