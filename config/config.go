// Package config loads the fractald settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cocosip/go-pngstream/fractal"
	"github.com/cocosip/go-pngstream/png/stream"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete server configuration
type Config struct {
	// Listen is the HTTP listen address
	Listen string `yaml:"listen"`

	// DataDir stores blobs on disk; empty keeps them in memory
	DataDir string `yaml:"data_dir"`

	// PublicURL is the externally visible base URL, used in webhook links
	PublicURL string `yaml:"public_url"`

	// HookURL receives scheduled render notifications; empty disables them
	HookURL string `yaml:"hook_url"`

	// Interval between scheduled renders; zero disables the scheduler
	Interval time.Duration `yaml:"interval"`

	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	FaviconSize int `yaml:"favicon_size"`

	// FlushThreshold and CompressionLevel configure the PNG encoder
	FlushThreshold   int `yaml:"flush_threshold"`
	CompressionLevel int `yaml:"compression_level"`

	Fractal fractal.Params `yaml:"fractal"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	enc := stream.DefaultOptions()
	return &Config{
		Listen:           ":8080",
		PublicURL:        "http://localhost:8080",
		Interval:         time.Hour,
		Width:            800,
		Height:           800,
		FaviconSize:      16,
		FlushThreshold:   enc.FlushThreshold,
		CompressionLevel: enc.CompressionLevel,
		Fractal:          fractal.DefaultParams(),
	}
}

// LoadConfig reads filename over the defaults and validates the result
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes the configuration as YAML
func (c *Config) SaveConfig(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks sizes, the interval and the encoder and fractal settings
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("%w: listen address is empty", ErrInvalidConfig)
	}
	if c.Width <= 0 || c.Height <= 0 || c.FaviconSize <= 0 {
		return fmt.Errorf("%w: image sizes must be positive (%dx%d, favicon %d)",
			ErrInvalidConfig, c.Width, c.Height, c.FaviconSize)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: negative interval %v", ErrInvalidConfig, c.Interval)
	}
	if c.HookURL != "" && c.PublicURL == "" {
		return fmt.Errorf("%w: hook_url requires public_url", ErrInvalidConfig)
	}
	if err := c.EncoderOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Fractal.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// EncoderOptions converts the encoder settings to stream options
func (c *Config) EncoderOptions() *stream.Options {
	return stream.DefaultOptions().
		WithFlushThreshold(c.FlushThreshold).
		WithCompressionLevel(c.CompressionLevel)
}
