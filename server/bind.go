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

package server

import (
	"fmt"
	"net"
	"syscall"

	"rivaas.dev/corehttp/config"
	"rivaas.dev/corehttp/errors"
)

// bind binds (address, port); if auto_port is set and the port is in
// use, probe sequentially up to max_port_attempts before failing with
// BindFailed. SO_REUSEPORT is applied through a net.ListenConfig.Control
// hook, the stdlib's sole portable mechanism for setting socket options
// before bind(2).
func bind(cfg *config.Config) (net.Listener, int, error) {
	lc := net.ListenConfig{}
	if cfg.ReusePort {
		lc.Control = controlReusePort
	}

	port := cfg.Port
	attempts := 1
	if cfg.AutoPort {
		attempts = cfg.MaxPortAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		addr := fmt.Sprintf("%s:%d", cfg.Address, port+i)
		ln, err := lc.Listen(nil, "tcp", addr)
		if err == nil {
			return ln, port + i, nil
		}
		lastErr = err
		if !cfg.AutoPort {
			break
		}
	}

	return nil, 0, errors.Wrap(lastErr, errors.KindTransport, errors.CodeBindFailed,
		fmt.Sprintf("failed to bind after %d attempt(s) starting at port %d", attempts, cfg.Port))
}

// soReuseport is SO_REUSEPORT's value on Linux, the deployment target for
// this server. syscall.SO_REUSEPORT is unavailable on some build
// platforms in this module's GOOS matrix, so the value is spelled out
// directly rather than gated behind per-GOOS files.
const soReuseport = 0xf

func controlReusePort(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, soReuseport, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// applySocketOptions sets TCP_NODELAY and SO_KEEPALIVE on an accepted
// connection: TCP_NODELAY when configured, keepalive per
// keepalive_timeout_ms.
func applySocketOptions(conn net.Conn, cfg *config.Config) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	if cfg.TCPNoDelay {
		_ = tc.SetNoDelay(true)
	}
	if cfg.KeepAliveTimeout > 0 {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(cfg.KeepAliveTimeout)
	}
}
