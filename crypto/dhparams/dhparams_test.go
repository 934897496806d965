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

package dhparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/srd/protoerr"
)

func TestLookupSupportedSizes(t *testing.T) {
	for _, size := range []int{256, 512, 1024} {
		p, err := Lookup(size)
		require.NoError(t, err)
		assert.Equal(t, size, p.KeySize)
		assert.Equal(t, size, len(p.Prime.Bytes()))
		assert.NotZero(t, p.Generator.Sign())
	}
}

func TestLookupRejectsUnsupportedSize(t *testing.T) {
	_, err := Lookup(128)
	assert.ErrorIs(t, err, protoerr.ErrInvalidKeySize)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(256))
	assert.True(t, Supported(512))
	assert.True(t, Supported(1024))
	assert.False(t, Supported(2048))
}

func TestGeneratorBytesLength(t *testing.T) {
	g := GeneratorBytes()
	assert.Len(t, g, 2)
}

func TestPrimesDistinct(t *testing.T) {
	p256, _ := Lookup(256)
	p512, _ := Lookup(512)
	p1024, _ := Lookup(1024)
	assert.NotEqual(t, p256.Prime.String(), p512.Prime.String())
	assert.NotEqual(t, p512.Prime.String(), p1024.Prime.String())
}
