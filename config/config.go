// Package config loads launcher and driver settings for duelist.
//
// Every field has a default, so a missing config file yields the stock
// setup: python agents on localhost ports 8080 and 8000, coordinated by
// ./game.py with a 900 unit time budget.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a config fails validation.
var ErrInvalid = errors.New("invalid config")

// Config holds the process launch parameters and the cache location.
type Config struct {
	Host        string        `yaml:"host" validate:"required,hostname|ip"`
	AgentPorts  [2]int        `yaml:"agent_ports" validate:"dive,min=1,max=65535"`
	Interpreter string        `yaml:"interpreter" validate:"required"`
	SettleDelay time.Duration `yaml:"settle_delay" validate:"min=0"`
	CachePath   string        `yaml:"cache_path" validate:"required"`
	Game        Game          `yaml:"game"`
}

// Game describes how the coordinator is started.
type Game struct {
	Script     string   `yaml:"script" validate:"required"`
	TimeBudget int      `yaml:"time_budget" validate:"gt=0"`
	ExtraArgs  []string `yaml:"extra_args"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:        "localhost",
		AgentPorts:  [2]int{8080, 8000},
		Interpreter: "python3",
		SettleDelay: time.Second,
		CachePath:   "benchmarks.cache",
		Game: Game{
			Script:     "./game.py",
			TimeBudget: 900,
			ExtraArgs:  []string{"--no-gui", "--verbose"},
		},
	}
}

var validate = validator.New()

// Load reads a YAML config from path on top of Default. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config data. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field constraints and that both agents get their own
// port.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if cfg.AgentPorts[0] == cfg.AgentPorts[1] {
		return fmt.Errorf("%w: agent ports must differ, both are %d",
			ErrInvalid, cfg.AgentPorts[0])
	}

	return nil
}
