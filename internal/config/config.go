// Package config loads run settings from an optional YAML file on top of
// built-in defaults. Command-line flags are applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"dominion/internal/dump"
	"dominion/internal/render"
	"dominion/internal/rgb"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config holds every tunable of a run
type Config struct {
	Zoom         int             `yaml:"zoom" validate:"min=1"`
	Width        int             `yaml:"width" validate:"min=0"`
	Height       int             `yaml:"height" validate:"min=0"`
	LineCapacity int             `yaml:"line_capacity" validate:"min=2"`
	Encoding     string          `yaml:"encoding" validate:"encoding"`
	SwapRedBlue  bool            `yaml:"swap_red_blue"`
	Background   string          `yaml:"background" validate:"len=7,hexcolor"`
	Tables       dump.TableNames `yaml:"tables"`
	LogLevel     string          `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile      string          `yaml:"log_file"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Zoom:         1,
		LineCapacity: dump.DefaultLineCapacity,
		Encoding:     "utf-8",
		SwapRedBlue:  true,
		Background:   "#000000",
		Tables:       dump.DefaultTableNames,
		LogLevel:     "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes YAML from r over the defaults and validates the result
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("encoding", func(fl validator.FieldLevel) bool {
		return dump.KnownEncoding(fl.Field().String())
	})
	return v
}

// Validate checks every field
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// DumpConfig returns the parser settings
func (c Config) DumpConfig() dump.Config {
	return dump.Config{
		Tables:       c.Tables,
		LineCapacity: c.LineCapacity,
		Encoding:     c.Encoding,
	}
}

// RenderOptions returns the rasterizer settings
func (c Config) RenderOptions() render.Options {
	return render.Options{
		Zoom:        c.Zoom,
		Width:       c.Width,
		Height:      c.Height,
		SwapRedBlue: c.SwapRedBlue,
		Background:  rgb.FromHex(c.Background),
	}
}
