// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, "127.0.0.1", c.Address)
	assert.Equal(t, 8000, c.Port)
	assert.Equal(t, int64(10<<20), c.MaxBodySize)
	assert.Nil(t, c.NumThreads)
	assert.True(t, c.AutoPort)
	assert.Equal(t, 100, c.MaxPortAttempts)
	assert.Equal(t, 5000*time.Millisecond, c.KeepAliveTimeout)
	assert.Equal(t, 10000, c.MaxConnections)
	assert.True(t, c.TCPNoDelay)
	assert.True(t, c.ReusePort)
	assert.False(t, c.DisableReservedRoutes)
}

func TestOptionsApplyInOrder(t *testing.T) {
	c := New(
		WithPort(9090),
		WithNumThreads(0),
		WithoutReservedRoutes(),
	)
	assert.Equal(t, 9090, c.Port)
	require := *c.NumThreads
	assert.Equal(t, 0, require)
	assert.True(t, c.DisableReservedRoutes)
}
