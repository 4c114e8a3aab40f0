package beanforge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	ierrors "github.com/xraph/beanforge/internal/errors"
	"github.com/xraph/beanforge/internal/observability"
	"github.com/xraph/beanforge/logger"
)

// EnvLogLevel overrides Config.Logging.Level when set.
const EnvLogLevel = "BEANFORGE_LOG_LEVEL"

// Config configures a container.
type Config struct {
	Logging logger.LoggingConfig `yaml:"logging" json:"logging"`

	// AllowDefinitionOverriding lets a registration replace an existing name.
	AllowDefinitionOverriding bool `yaml:"allowDefinitionOverriding" json:"allowDefinitionOverriding"`

	// PreInstantiate creates every non-lazy singleton during Refresh.
	PreInstantiate bool `yaml:"preInstantiate" json:"preInstantiate"`

	Metrics observability.MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing observability.TracingConfig `yaml:"tracing" json:"tracing"`

	// Descriptors lists YAML or JSON class descriptor files for classes
	// known only by name.
	Descriptors []string `yaml:"descriptors" json:"descriptors"`
}

// DefaultConfig returns the default container configuration.
func DefaultConfig() Config {
	return Config{
		Logging: logger.LoggingConfig{
			Level:       "info",
			Format:      "console",
			Environment: "development",
		},
		AllowDefinitionOverriding: false,
		PreInstantiate:            true,
		Metrics:                   observability.DefaultMetricsConfig(),
		Tracing:                   observability.DefaultTracingConfig(),
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, ierrors.ErrConfigError("failed to read config file "+path, err)
	}
	return ParseConfig(bytes.NewReader(data))
}

// ParseConfig decodes a YAML configuration on top of DefaultConfig. Unknown
// keys are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, ierrors.ErrConfigError("failed to decode config", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.Logging.Level = level
	}
}

var validate = validator.New()

// Validate checks the configuration for values the container cannot use.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return ierrors.ErrConfigError(formatValidationError(err), err)
	}
	for i, path := range c.Descriptors {
		if strings.TrimSpace(path) == "" {
			return ierrors.ErrConfigError(fmt.Sprintf("descriptors[%d] is empty", i), nil)
		}
	}
	return nil
}

func formatValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		field := configPath(e.Namespace())
		switch e.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required when enabled", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

// configPath turns "Config.Metrics.Namespace" into "metrics.namespace".
func configPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}
