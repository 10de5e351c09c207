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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
address: 0.0.0.0
port: 9443
max_body_size: 524288
keep_alive_timeout_ms: 2500
disable_reserved_routes: true
`

func TestLoadBytesOverridesOnlyPresentKeys(t *testing.T) {
	c, err := LoadBytes([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", c.Address)
	assert.Equal(t, 9443, c.Port)
	assert.Equal(t, int64(524288), c.MaxBodySize)
	assert.Equal(t, 2500*time.Millisecond, c.KeepAliveTimeout)
	assert.True(t, c.DisableReservedRoutes)

	// Keys absent from the document keep Default()'s value.
	assert.True(t, c.AutoPort)
	assert.Equal(t, 100, c.MaxPortAttempts)
	assert.Equal(t, 10000, c.MaxConnections)
}

func TestLoadBytesEmptyDocumentYieldsDefaults(t *testing.T) {
	c, err := LoadBytes([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadBytesRejectsMalformedYAML(t *testing.T) {
	_, err := LoadBytes([]byte("address: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFileReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corehttp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9443, c.Port)
}

func TestLoadFileMissingPathReturnsError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
