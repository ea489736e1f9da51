// Package config loads and validates the stagehand configuration.
//
// Configuration comes from an optional TOML file layered over built-in
// defaults. The responder message supports ${VAR:default} environment
// references which are resolved once, during Validate; the resolved value is
// immutable for the lifetime of the process.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/stagehand-ci/stagehand/internal/config/errz"
	"github.com/stagehand-ci/stagehand/internal/config/version"
	"github.com/stagehand-ci/stagehand/internal/interpolation"
	"golang.org/x/net/http/httpguts"
)

const (
	// MessageEnvVar is the environment variable that overrides the responder body.
	MessageEnvVar = "ENV_MESSAGE"

	// DefaultMessage is the body served when MessageEnvVar is absent or empty.
	DefaultMessage = "No environment message set!"

	// DefaultListenAddr is the production responder bind address.
	DefaultListenAddr = ":3000"

	// DefaultGateAddr is the bind address for the gate's integration check. It
	// is distinct from DefaultListenAddr so the check never collides with a
	// concurrently running production instance.
	DefaultGateAddr = ":4000"
)

// ResponderConfig configures the HTTP responder.
type ResponderConfig struct {
	Listen  string `toml:"listen"`
	Message string `toml:"message" env_interpolation:"yes"`
	Stage   string `toml:"stage"   env_interpolation:"yes"`
}

// GateConfig configures the gate check.
type GateConfig struct {
	Listen string `toml:"listen"`
}

// Config is the root stagehand configuration.
type Config struct {
	Version   string          `toml:"version"`
	Responder ResponderConfig `toml:"responder"`
	Gate      GateConfig      `toml:"gate"`
}

// Default returns the configuration used when no file is provided. The
// message is an interpolation template deferring to MessageEnvVar, with the
// fixed fallback when the variable is unset.
func Default() *Config {
	return &Config{
		Version: version.Version,
		Responder: ResponderConfig{
			Listen:  DefaultListenAddr,
			Message: fmt.Sprintf("${%s:%s}", MessageEnvVar, DefaultMessage),
		},
		Gate: GateConfig{
			Listen: DefaultGateAddr,
		},
	}
}

// NewConfig loads configuration from a TOML file. An empty path returns the
// built-in defaults.
func NewConfig(filePath string) (*Config, error) {
	if filePath == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToLoadConfig, err)
	}

	return NewConfigFromBytes(data)
}

// NewConfigFromBytes loads configuration from TOML bytes, layered over the
// defaults.
func NewConfigFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := gotoml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrParseToml, err)
	}

	if cfg.Version == "" {
		cfg.Version = version.Version
	}
	if cfg.Version != version.Version {
		return nil, fmt.Errorf(
			"version %s is not supported: %w",
			cfg.Version,
			errz.ErrUnsupportedConfigVer,
		)
	}

	// An explicitly empty address falls back rather than binding ":0".
	if cfg.Responder.Listen == "" {
		cfg.Responder.Listen = DefaultListenAddr
	}
	if cfg.Gate.Listen == "" {
		cfg.Gate.Listen = DefaultGateAddr
	}
	if cfg.Responder.Message == "" {
		cfg.Responder.Message = Default().Responder.Message
	}

	return cfg, nil
}

// Validate resolves environment references and checks the configuration.
// Interpolated values replace their templates in place; after Validate
// returns nil the message is final.
func (c *Config) Validate() error {
	if err := interpolation.InterpolateStruct(c); err != nil {
		return fmt.Errorf("%w: %w", errz.ErrFailedToValidateConfig, err)
	}

	var errs []error

	// A message resolving empty (variable set but blank) falls back, so
	// absent and empty behave identically.
	if c.Responder.Message == "" {
		c.Responder.Message = DefaultMessage
	}

	if c.Responder.Listen == "" {
		errs = append(errs, fmt.Errorf("%w: responder listen address", errz.ErrMissingRequiredField))
	}
	if c.Gate.Listen == "" {
		errs = append(errs, fmt.Errorf("%w: gate listen address", errz.ErrMissingRequiredField))
	}
	if c.Responder.Listen != "" && c.Responder.Listen == c.Gate.Listen {
		errs = append(errs, fmt.Errorf(
			"%w: gate listen address %q must differ from responder listen address",
			errz.ErrInvalidValue, c.Gate.Listen,
		))
	}
	if c.Responder.Stage != "" && !httpguts.ValidHeaderFieldValue(c.Responder.Stage) {
		errs = append(errs, fmt.Errorf(
			"%w: responder stage %q is not a valid header value",
			errz.ErrInvalidValue, c.Responder.Stage,
		))
	}

	return errors.Join(errs...)
}

// String returns a short human-readable summary of the configuration.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Version: %s\n", c.Version)
	fmt.Fprintf(&b, "Responder: listen=%s message=%q", c.Responder.Listen, c.Responder.Message)
	if c.Responder.Stage != "" {
		fmt.Fprintf(&b, " stage=%s", c.Responder.Stage)
	}
	fmt.Fprintf(&b, "\nGate: listen=%s", c.Gate.Listen)
	return b.String()
}
