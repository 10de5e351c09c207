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
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config's fields under the snake_case keys an
// operator would actually write in a config file, decoding into a plain
// struct rather than implementing custom (Un)MarshalYAML methods on the
// domain type itself. Zero-valued fields (the YAML key absent) leave Default()'s
// value in place — LoadFile starts from Default() and overwrites only
// what the document sets.
type fileConfig struct {
	Address string `yaml:"address"`
	Port    *int   `yaml:"port"`

	MaxBodySize    *int64 `yaml:"max_body_size"`
	NumThreads     *int   `yaml:"num_threads"`
	ReadBufferSize *int   `yaml:"read_buffer_size"`

	EnableAccessLog *bool `yaml:"enable_access_log"`

	AutoPort        *bool `yaml:"auto_port"`
	MaxPortAttempts *int  `yaml:"max_port_attempts"`

	// KeepAliveTimeoutMS is in milliseconds rather than a
	// time.ParseDuration-style string — yaml.v3 has no built-in
	// time.Duration support, and a bare numeric scalar keeps LoadFile
	// free of a custom UnmarshalYAML method.
	KeepAliveTimeoutMS *int64 `yaml:"keep_alive_timeout_ms"`
	MaxConnections     *int   `yaml:"max_connections"`

	TCPNoDelay *bool `yaml:"tcp_no_delay"`
	ReusePort  *bool `yaml:"reuse_port"`

	DisableReservedRoutes *bool `yaml:"disable_reserved_routes"`
}

// LoadFile reads a YAML configuration document from path and returns the
// Config it describes, starting from Default() and overriding only the
// keys present in the document. An operator-facing companion to the
// functional-options constructor New, for the common case of one static
// config file per deployment rather than options wired up in code.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes decodes a YAML document already in memory, for callers that
// source it from somewhere other than the local filesystem (an embedded
// asset, a secret manager, a test fixture).
func LoadBytes(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	c := Default()
	if fc.Address != "" {
		c.Address = fc.Address
	}
	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.MaxBodySize != nil {
		c.MaxBodySize = *fc.MaxBodySize
	}
	if fc.NumThreads != nil {
		c.NumThreads = fc.NumThreads
	}
	if fc.ReadBufferSize != nil {
		c.ReadBufferSize = *fc.ReadBufferSize
	}
	if fc.EnableAccessLog != nil {
		c.EnableAccessLog = *fc.EnableAccessLog
	}
	if fc.AutoPort != nil {
		c.AutoPort = *fc.AutoPort
	}
	if fc.MaxPortAttempts != nil {
		c.MaxPortAttempts = *fc.MaxPortAttempts
	}
	if fc.KeepAliveTimeoutMS != nil {
		c.KeepAliveTimeout = time.Duration(*fc.KeepAliveTimeoutMS) * time.Millisecond
	}
	if fc.MaxConnections != nil {
		c.MaxConnections = *fc.MaxConnections
	}
	if fc.TCPNoDelay != nil {
		c.TCPNoDelay = *fc.TCPNoDelay
	}
	if fc.ReusePort != nil {
		c.ReusePort = *fc.ReusePort
	}
	if fc.DisableReservedRoutes != nil {
		c.DisableReservedRoutes = *fc.DisableReservedRoutes
	}
	return c, nil
}
