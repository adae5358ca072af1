// Package config handles modcompat.toml configuration.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/modcompat/errors"
	"github.com/wippyai/modcompat/host"
	"github.com/wippyai/modcompat/rewrite"
)

// FileName is the default configuration file name.
const FileName = "modcompat.toml"

// Config is the modcompat configuration.
type Config struct {
	// Platform the host runs on; defaults to the current OS.
	Platform string `toml:"platform"`
	// Host is an optional TOML host description; the built-in Stardew
	// Valley description is used when empty.
	Host     string      `toml:"host"`
	LogLevel string      `toml:"log-level"`
	Rules    []FieldRule `toml:"field-to-property"`
	Strict   bool        `toml:"strict"`

	// Dir is the directory containing the configuration file (set at load time).
	Dir string `toml:"-"`
}

// FieldRule declares an additional field that became a property.
type FieldRule struct {
	Type     string `toml:"type"`
	Field    string `toml:"field"`
	Instance bool   `toml:"instance"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Platform: defaultPlatform(),
		LogLevel: "info",
		Dir:      ".",
	}
}

func defaultPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return string(host.Windows)
	case "darwin":
		return string(host.Mac)
	default:
		return string(host.Linux)
	}
}

// Load parses a configuration file, applies defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read config "+path, err)
	}

	c := Default()
	if _, err := toml.Decode(string(data), c); err != nil {
		return nil, errors.Config("parse "+path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Config("resolve "+path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := host.ParsePlatform(c.Platform); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for i, r := range c.Rules {
		if r.Type == "" || r.Field == "" {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path("field-to-property").
				Value(i).
				Detail("rule %d needs both type and field", i).
				Build()
		}
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, errors.Config("log-level", err)
	}
	return lvl, nil
}

// AssemblyMap returns the host description for the configured platform.
func (c *Config) AssemblyMap() (*host.PlatformAssemblyMap, error) {
	platform, err := host.ParsePlatform(c.Platform)
	if err != nil {
		return nil, err
	}
	if c.Host == "" {
		return host.StardewValley(platform), nil
	}
	path := c.Host
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Dir, path)
	}
	return host.LoadMap(path, platform)
}

// Rewriters returns the rewriters declared by the configuration's rules.
func (c *Config) Rewriters() []rewrite.Rewriter {
	out := make([]rewrite.Rewriter, 0, len(c.Rules))
	for _, r := range c.Rules {
		out = append(out, rewrite.FieldToProperty{Type: r.Type, Field: r.Field, Instance: r.Instance}.Rewriter())
	}
	return out
}
