// Package config loads the assistant configuration from automate.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/automate/internal/logging"
	"github.com/aretw0/automate/pkg/worker"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "automate.yaml"

// Config is the full assistant configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Agent    AgentConfig    `yaml:"agent"`
	Apps     string         `yaml:"apps"`
	Outputs  OutputsConfig  `yaml:"outputs"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Loop     LoopConfig     `yaml:"loop"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// AgentConfig selects the agent script.
type AgentConfig struct {
	Script    string        `yaml:"script"`
	StepDelay time.Duration `yaml:"step_delay"`
}

// OutputsConfig selects the output mapping backend. Without RedisAddr the
// mapping lives in memory.
type OutputsConfig struct {
	RedisAddr string `yaml:"redis_addr"`
	RedisKey  string `yaml:"redis_key"`
}

// DispatchConfig controls how requests overlap and how failures are shown.
type DispatchConfig struct {
	Policy        string `yaml:"policy"`
	SwallowErrors bool   `yaml:"swallow_errors"`
}

// LoopConfig bounds loop actions.
type LoopConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Apps:     "apps.yaml",
		Outputs:  OutputsConfig{RedisKey: "automate:outputs"},
		Dispatch: DispatchConfig{Policy: string(worker.PolicyConcurrent)},
		HTTP:     HTTPConfig{Addr: ":8080"},
	}
}

// Load reads path over the defaults, applies AUTOMATE_* overrides and validates.
// A missing file is not an error when path is DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides copies AUTOMATE_* variables over the loaded values.
func (c *Config) ApplyEnvOverrides() error {
	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}
	setString("AUTOMATE_LOG_LEVEL", &c.LogLevel)
	setString("AUTOMATE_AGENT_SCRIPT", &c.Agent.Script)
	setString("AUTOMATE_APPS", &c.Apps)
	setString("AUTOMATE_REDIS_ADDR", &c.Outputs.RedisAddr)
	setString("AUTOMATE_REDIS_KEY", &c.Outputs.RedisKey)
	setString("AUTOMATE_DISPATCH_POLICY", &c.Dispatch.Policy)
	setString("AUTOMATE_HTTP_ADDR", &c.HTTP.Addr)

	if v, ok := os.LookupEnv("AUTOMATE_AGENT_STEP_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AUTOMATE_AGENT_STEP_DELAY: %w", err)
		}
		c.Agent.StepDelay = d
	}
	if v, ok := os.LookupEnv("AUTOMATE_SWALLOW_ERRORS"); ok {
		c.Dispatch.SwallowErrors = v == "1" || strings.EqualFold(v, "true")
	}
	if v, ok := os.LookupEnv("AUTOMATE_LOOP_MAX_ITERATIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUTOMATE_LOOP_MAX_ITERATIONS: %w", err)
		}
		c.Loop.MaxIterations = n
	}
	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, ValidationError{Field: "log_level", Message: err.Error()})
	}
	if _, err := worker.ParsePolicy(c.Dispatch.Policy); err != nil {
		errs = append(errs, ValidationError{Field: "dispatch.policy", Message: err.Error()})
	}
	if c.Loop.MaxIterations < 0 {
		errs = append(errs, ValidationError{Field: "loop.max_iterations", Message: "must be >= 0"})
	}
	if c.Agent.StepDelay < 0 {
		errs = append(errs, ValidationError{Field: "agent.step_delay", Message: "must be >= 0"})
	}

	return errors.Join(errs...)
}

// ErrorPolicy returns the worker error policy selected by the config.
func (c *Config) ErrorPolicy() worker.ErrorPolicy {
	if c.Dispatch.SwallowErrors {
		return worker.SwallowErrors
	}
	return worker.SurfaceErrors
}
