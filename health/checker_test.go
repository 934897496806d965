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

package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNGHealthCheckPasses(t *testing.T) {
	err := RNGHealthCheck()(context.Background())
	assert.NoError(t, err)
}

func TestDHParamsHealthCheckPasses(t *testing.T) {
	err := DHParamsHealthCheck()(context.Background())
	assert.NoError(t, err)
}

func TestCheckerRegisterAndCheck(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("rng", RNGHealthCheck())
	h.RegisterCheck("dhparams", DHParamsHealthCheck())

	result, err := h.Check(context.Background(), "rng")
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, result.Status)

	status := h.GetOverallStatus(context.Background())
	assert.Equal(t, StatusHealthy, status)
}

func TestCheckerReportsUnhealthyOnFailingCheck(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("always_fails", func(ctx context.Context) error {
		return errors.New("boom")
	})

	result, err := h.Check(context.Background(), "always_fails")
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, result.Status)

	status := h.GetOverallStatus(context.Background())
	assert.Equal(t, StatusUnhealthy, status)
}

func TestCheckUnknownNameErrors(t *testing.T) {
	h := NewHealthChecker(time.Second)
	_, err := h.Check(context.Background(), "missing")
	assert.Error(t, err)
}

func TestCheckResultIsCached(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.SetCacheTTL(time.Minute)
	calls := 0
	h.RegisterCheck("counted", func(ctx context.Context) error {
		calls++
		return nil
	})

	_, err := h.Check(context.Background(), "counted")
	require.NoError(t, err)
	_, err = h.Check(context.Background(), "counted")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestUnregisterCheckClearsCache(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("rng", RNGHealthCheck())
	_, err := h.Check(context.Background(), "rng")
	require.NoError(t, err)

	h.UnregisterCheck("rng")
	_, err = h.Check(context.Background(), "rng")
	assert.Error(t, err)
}

func TestGetSystemHealthIncludesAllChecks(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("rng", RNGHealthCheck())
	h.RegisterCheck("dhparams", DHParamsHealthCheck())

	sys := h.GetSystemHealth(context.Background())
	assert.Equal(t, StatusHealthy, sys.Status)
	assert.Len(t, sys.Checks, 2)
}
