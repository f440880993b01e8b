// Package config loads the YAML configuration shared by the trainer and the
// prediction service.
package config

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset"`
	Training   TrainingConfig   `yaml:"training"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	RunHistory RunHistoryConfig `yaml:"run_history"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

type DatasetConfig struct {
	Path string `yaml:"path"`
}

type TrainingConfig struct {
	Target   string  `yaml:"target"`
	TopK     int     `yaml:"top_k"`
	TestSize float64 `yaml:"test_size"`
	Seed     uint64  `yaml:"seed"`
	Alpha    float64 `yaml:"alpha"`
}

type ArtifactsConfig struct {
	Model   string `yaml:"model"`
	Metrics string `yaml:"metrics"`
	// CorrelationPlot is optional; empty disables the chart.
	CorrelationPlot string `yaml:"correlation_plot"`
}

// RunHistoryConfig points at the SQLite run history. Empty disables it.
type RunHistoryConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Name            string        `yaml:"name"`
	RollNo          string        `yaml:"roll_no"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{Path: "dataset/winequality-red.csv"},
		Training: TrainingConfig{
			Target:   "quality",
			TopK:     5,
			TestSize: 0.2,
			Seed:     42,
			Alpha:    0.5,
		},
		Artifacts: ArtifactsConfig{
			Model:   "output/model/trained_model.json",
			Metrics: "app/artifacts/metrics.json",
		},
		Server: ServerConfig{
			Addr:            ":8000",
			Name:            "Mohamed Jaasir Subair",
			RollNo:          "2022BCS0010",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns Default().
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := decode(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate checks ranges and required paths.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dataset.Path) == "" {
		return errors.NewValidationError("dataset.path", "is required", c.Dataset.Path)
	}
	if strings.TrimSpace(c.Training.Target) == "" {
		return errors.NewValidationError("training.target", "is required", c.Training.Target)
	}
	if c.Training.TopK < 1 {
		return errors.NewValidationError("training.top_k", "must be at least 1", c.Training.TopK)
	}
	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		return errors.NewValidationError("training.test_size", "must be in (0, 1)", c.Training.TestSize)
	}
	if c.Training.Alpha < 0 {
		return errors.NewValidationError("training.alpha", "must be non-negative", c.Training.Alpha)
	}
	if strings.TrimSpace(c.Artifacts.Model) == "" {
		return errors.NewValidationError("artifacts.model", "is required", c.Artifacts.Model)
	}
	if strings.TrimSpace(c.Artifacts.Metrics) == "" {
		return errors.NewValidationError("artifacts.metrics", "is required", c.Artifacts.Metrics)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.NewValidationError("server.addr", "is required", c.Server.Addr)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.NewValidationError("server.shutdown_timeout", "must be positive", c.Server.ShutdownTimeout)
	}
	return nil
}
