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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWhenNoFilesExist(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(LoaderOptions{ConfigDir: filepath.Join(dir, "missing"), Environment: "test"})
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 256, cfg.DefaultKeySize)
}

func TestLoadReadsEnvironmentSpecificFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{DefaultKeySize: 512, SupportedCiphers: []string{"AES256"}}
	require.NoError(t, SaveToFile(cfg, filepath.Join(dir, "staging.yaml")))

	loaded, err := Load(LoaderOptions{ConfigDir: dir, Environment: "staging"})
	require.NoError(t, err)
	assert.Equal(t, 512, loaded.DefaultKeySize)
	assert.Equal(t, []string{"AES256"}, loaded.SupportedCiphers)
}

func TestApplyEnvironmentOverridesTakePriority(t *testing.T) {
	t.Setenv("SRD_LOG_LEVEL", "debug")
	t.Setenv("SRD_DEFAULT_KEY_SIZE", "512")
	t.Setenv("SRD_CIPHERS", "AES256,XChaCha20")
	t.Setenv("SRD_METRICS_ENABLED", "true")

	cfg := &Config{}
	setDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 512, cfg.DefaultKeySize)
	assert.Equal(t, []string{"AES256", "XChaCha20"}, cfg.SupportedCiphers)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestValidateConfigurationRejectsUnsupportedKeySize(t *testing.T) {
	cfg := &Config{DefaultKeySize: 123, SupportedCiphers: []string{"AES256"}}
	issues := ValidateConfiguration(cfg)
	require.NotEmpty(t, issues)
	assert.Equal(t, "default_key_size", issues[0].Field)
	assert.Equal(t, "error", issues[0].Level)
}

func TestValidateConfigurationRejectsEmptyCiphers(t *testing.T) {
	cfg := &Config{DefaultKeySize: 256}
	issues := ValidateConfiguration(cfg)
	require.NotEmpty(t, issues)
}

func TestValidateConfigurationRejectsUnknownCipher(t *testing.T) {
	cfg := &Config{DefaultKeySize: 256, SupportedCiphers: []string{"DES"}}
	issues := ValidateConfiguration(cfg)
	require.NotEmpty(t, issues)
	assert.Equal(t, "supported_ciphers", issues[0].Field)
}

func TestValidateConfigurationAcceptsValidConfig(t *testing.T) {
	cfg := &Config{DefaultKeySize: 256, SupportedCiphers: []string{"AES256", "ChaCha20", "XChaCha20"}}
	issues := ValidateConfiguration(cfg)
	assert.Empty(t, issues)
}

func TestLoadFailsOnInvalidConfiguration(t *testing.T) {
	t.Setenv("SRD_DEFAULT_KEY_SIZE", "123")
	dir := t.TempDir()
	_, err := Load(LoaderOptions{ConfigDir: dir, Environment: "test"})
	assert.Error(t, err)
}

func TestMustLoadPanicsOnInvalidConfiguration(t *testing.T) {
	t.Setenv("SRD_DEFAULT_KEY_SIZE", "123")
	dir := t.TempDir()
	assert.Panics(t, func() {
		MustLoad(LoaderOptions{ConfigDir: dir, Environment: "test"})
	})
}
