// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sage-x-project/srd/crypto/dhparams"
)

// LoaderOptions configures the configuration loader.
type LoaderOptions struct {
	// ConfigDir is the directory containing config files (default: ./config).
	ConfigDir string
	// Environment overrides automatic environment detection.
	Environment string
	// SkipEnvSubstitution disables environment variable substitution.
	SkipEnvSubstitution bool
	// SkipValidation disables configuration validation.
	SkipValidation bool
}

// DefaultLoaderOptions returns default loader options.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		ConfigDir:           "config",
		Environment:         "",
		SkipEnvSubstitution: false,
		SkipValidation:      false,
	}
}

// Load loads configuration with automatic environment detection: it tries
// <dir>/<environment>.yaml, then <dir>/default.yaml, then <dir>/config.yaml,
// falling back to hardcoded defaults if none exist.
func Load(opts ...LoaderOptions) (*Config, error) {
	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	env := options.Environment
	if env == "" {
		env = GetEnvironment()
	}

	envConfigPath := filepath.Join(options.ConfigDir, fmt.Sprintf("%s.yaml", env))
	cfg, err := loadConfigFile(envConfigPath)
	if err != nil {
		defaultConfigPath := filepath.Join(options.ConfigDir, "default.yaml")
		cfg, err = loadConfigFile(defaultConfigPath)
		if err != nil {
			configPath := filepath.Join(options.ConfigDir, "config.yaml")
			cfg, err = loadConfigFile(configPath)
			if err != nil {
				cfg = &Config{}
			}
		}
	}

	if cfg.Environment == "" {
		cfg.Environment = env
	}

	setDefaults(cfg)

	if !options.SkipEnvSubstitution {
		SubstituteEnvVarsInConfig(cfg)
	}

	applyEnvironmentOverrides(cfg)

	if !options.SkipValidation {
		if errs := ValidateConfiguration(cfg); len(errs) > 0 {
			for _, e := range errs {
				if e.Level == "error" {
					return nil, fmt.Errorf("configuration validation failed: %s - %s", e.Field, e.Message)
				}
			}
		}
	}

	return cfg, nil
}

// loadConfigFile loads a single config file.
func loadConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return LoadFromFile(path)
}

// applyEnvironmentOverrides overrides config with environment variables;
// these take the highest priority of any source.
func applyEnvironmentOverrides(cfg *Config) {
	if logLevel := os.Getenv("SRD_LOG_LEVEL"); logLevel != "" && cfg.Logging != nil {
		cfg.Logging.Level = logLevel
	}

	if keySize := os.Getenv("SRD_DEFAULT_KEY_SIZE"); keySize != "" {
		if n, err := strconv.Atoi(keySize); err == nil {
			cfg.DefaultKeySize = n
		}
	}

	if ciphers := os.Getenv("SRD_CIPHERS"); ciphers != "" {
		cfg.SupportedCiphers = strings.Split(ciphers, ",")
	}

	if os.Getenv("SRD_METRICS_ENABLED") == "true" && cfg.Metrics != nil {
		cfg.Metrics.Enabled = true
	}
	if os.Getenv("SRD_METRICS_ENABLED") == "false" && cfg.Metrics != nil {
		cfg.Metrics.Enabled = false
	}
}

// LoadForEnvironment loads configuration for a specific environment.
func LoadForEnvironment(environment string) (*Config, error) {
	return Load(LoaderOptions{
		ConfigDir:   "config",
		Environment: environment,
	})
}

// MustLoad loads configuration or panics on error.
func MustLoad(opts ...LoaderOptions) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// ValidationIssue is one problem found by ValidateConfiguration. Level is
// either "error" (Load fails) or "warning" (Load proceeds).
type ValidationIssue struct {
	Field   string
	Message string
	Level   string
}

// ValidateConfiguration checks cfg for values that would make an Engine
// unusable: an unsupported key size, an empty or unrecognized cipher list,
// and a few sanity bounds on the ambient sub-configs.
func ValidateConfiguration(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if !dhparams.Supported(cfg.DefaultKeySize) {
		issues = append(issues, ValidationIssue{
			Field:   "default_key_size",
			Message: fmt.Sprintf("%d is not one of the supported DH key sizes", cfg.DefaultKeySize),
			Level:   "error",
		})
	}

	if len(cfg.SupportedCiphers) == 0 {
		issues = append(issues, ValidationIssue{
			Field:   "supported_ciphers",
			Message: "at least one cipher must be configured",
			Level:   "error",
		})
	}
	for _, c := range cfg.SupportedCiphers {
		switch c {
		case "AES256", "ChaCha20", "XChaCha20":
		default:
			issues = append(issues, ValidationIssue{
				Field:   "supported_ciphers",
				Message: fmt.Sprintf("unrecognized cipher %q", c),
				Level:   "error",
			})
		}
	}

	if cfg.Metrics != nil && cfg.Metrics.Enabled && cfg.Metrics.Port <= 0 {
		issues = append(issues, ValidationIssue{
			Field:   "metrics.port",
			Message: "metrics port must be positive when metrics are enabled",
			Level:   "warning",
		})
	}
	if cfg.Health != nil && cfg.Health.Enabled && cfg.Health.Port <= 0 {
		issues = append(issues, ValidationIssue{
			Field:   "health.port",
			Message: "health port must be positive when health checks are enabled",
			Level:   "warning",
		})
	}

	return issues
}
