package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides DefaultPath.
const EnvPath = "DISPATCHDEMO_CONFIG"

// DefaultPath is where the demo looks for its config when EnvPath is unset.
const DefaultPath = ".dispatchdemo.toml"

// Config captures the user editable settings of dispatchdemo.
type Config struct {
	LogLevel      string     `toml:"log_level" yaml:"log_level"`
	LogTimestamps *bool      `toml:"log_timestamps" yaml:"log_timestamps"`
	Color         string     `toml:"color" yaml:"color"`
	Greet         GreetBlock `toml:"greet" yaml:"greet"`
}

// GreetBlock configures the greet command.
type GreetBlock struct {
	Greeting    string `toml:"greeting" yaml:"greeting"`
	Punctuation string `toml:"punctuation" yaml:"punctuation"`
}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// LogLevelOff disables failure logging.
const LogLevelOff = "off"

var (
	// ErrInvalidColor indicates the color mode is not recognized.
	ErrInvalidColor = errors.New("config.color must be auto, always, or never")
	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config.log_level must be a logrus level or off")
	// ErrUnknownFormat indicates the file extension selects no decoder.
	ErrUnknownFormat = errors.New("config files must end in .toml, .yaml, or .yml")
)

// Default returns the baseline configuration.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	} else {
		c.LogLevel = strings.ToLower(c.LogLevel)
	}
	if c.LogTimestamps == nil {
		stamp := true
		c.LogTimestamps = &stamp
	}
	if c.Color == "" {
		c.Color = ColorAuto
	} else {
		c.Color = strings.ToLower(c.Color)
	}
	c.Greet.applyDefaults()
}

func (g *GreetBlock) applyDefaults() {
	if g.Greeting == "" {
		g.Greeting = "Hello"
	}
	if g.Punctuation == "" {
		g.Punctuation = "!"
	}
}

// Validate ensures the configuration can guide the demo's behavior.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return ErrInvalidColor
	}
	if c.LogLevel != LogLevelOff {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return ErrInvalidLogLevel
		}
	}
	return nil
}

// Level returns the configured log level and whether logging is enabled.
func (c Config) Level() (logrus.Level, bool) {
	if c.LogLevel == LogLevelOff {
		return 0, false
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, true
	}
	return level, true
}

// Timestamps reports whether log entries carry timestamps. Unset means yes.
func (c Config) Timestamps() bool {
	return c.LogTimestamps == nil || *c.LogTimestamps
}

// Path returns the config location, honoring EnvPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Format reports the encoding implied by path's extension.
func Format(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", ErrUnknownFormat
}

// Load reads configuration from disk. Missing files return a default config.
func Load(path string) (Config, error) {
	format, err := Format(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}

	var cfg Config
	switch format {
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	case "yaml":
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes configuration to disk in the given format, or the one implied
// by path when format is empty. Parent directories are created as needed.
func Save(path, format string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if format == "" {
		var err error
		if format, err = Format(path); err != nil {
			return err
		}
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case "toml":
		data, err = toml.Marshal(cfg)
	case "yaml":
		data, err = yaml.Marshal(cfg)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
