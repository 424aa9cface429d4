// Package config loads the YAML run configuration of the convnets CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/born-ml/convnets/internal/models"
	"github.com/born-ml/convnets/internal/nn"
	"gopkg.in/yaml.v3"
)

// Config captures the knobs for one CLI run.
type Config struct {
	Model            string `yaml:"model"`
	nn.HParams       `yaml:",inline"`
	nn.InputGeometry `yaml:",inline"`
	BatchSize        int    `yaml:"batch_size"`
	Seed             int64  `yaml:"seed"`
	Workers          int    `yaml:"workers"` // 0 uses GOMAXPROCS
	Checkpoint       string `yaml:"checkpoint"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Model      string
	LR         float64
	NumClasses int
	InChannels int
	Height     int
	Width      int
	BatchSize  int
	Seed       int64
	Workers    int
	Checkpoint string
}

// Defaults returns the configuration for model with every field filled.
func Defaults(model string) (*Config, error) {
	mc, err := models.DefaultConfig(model)
	if err != nil {
		return nil, err
	}
	return &Config{
		Model:         model,
		HParams:       mc.HParams,
		InputGeometry: mc.Input,
		BatchSize:     1,
		Seed:          mc.Seed,
	}, nil
}

// Load reads and validates a Config from YAML. Unknown keys are errors.
// Fields left out of the file take the defaults of the selected model.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // G304: config path is user input
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of the selected model's defaults.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var head struct {
		Model string `yaml:"model"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	if head.Model == "" {
		return nil, errors.New("model must be set")
	}

	cfg, err := Defaults(head.Model)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
//
// A model override switches to that model's defaults first; the other
// overrides still apply on top.
func (c *Config) ApplyOverrides(o Overrides) error {
	if o.Model != "" && o.Model != c.Model {
		d, err := Defaults(o.Model)
		if err != nil {
			return err
		}
		d.BatchSize, d.Seed, d.Workers, d.Checkpoint = c.BatchSize, c.Seed, c.Workers, c.Checkpoint
		*c = *d
	}
	if o.LR > 0 {
		c.LR = o.LR
	}
	if o.NumClasses > 0 {
		c.NumClasses = o.NumClasses
	}
	if o.InChannels > 0 {
		c.Channels = o.InChannels
	}
	if o.Height > 0 {
		c.Height = o.Height
	}
	if o.Width > 0 {
		c.Width = o.Width
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.Checkpoint != "" {
		c.Checkpoint = o.Checkpoint
	}
	return nil
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if !slices.Contains(models.Names(), c.Model) {
		return fmt.Errorf("%w: %q (available: %v)", models.ErrUnknownModel, c.Model, models.Names())
	}
	if err := c.HParams.Validate(); err != nil {
		return err
	}
	if err := c.InputGeometry.Validate(); err != nil {
		return err
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	return nil
}

// ModelConfig returns the model construction parameters.
func (c *Config) ModelConfig() models.Config {
	return models.Config{HParams: c.HParams, Input: c.InputGeometry, Seed: c.Seed}
}
