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

package session

import (
	"log/slog"
	"sync"
	"time"

	"rivaas.dev/corehttp/logging"
	"rivaas.dev/corehttp/router"
)

// contextKey is the router.Context scratch-map key the active Session is
// stored under.
const contextKey = "corehttp.session"

// Manager ties a Store and Config together and exposes a middleware that
// loads, and on response flushes, the request's Session.
type Manager struct {
	cfg    *Config
	store  Store
	logger *slog.Logger

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// ManagerOption configures construction-time concerns not carried by
// Config (the logger).
type ManagerOption func(*Manager)

// WithLogger sets the structured logger used for cleanup diagnostics.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager constructs a Manager over store using cfg (nil = Default()).
func NewManager(store Store, cfg *Config, opts ...ManagerOption) *Manager {
	if cfg == nil {
		cfg = Default()
	}
	m := &Manager{cfg: cfg, store: store, logger: logging.Noop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the Session bound to c's request cookie, creating a new
// one if absent, expired, or malformed. The Session is also stashed on c
// so FromContext can retrieve it from handlers.
func (m *Manager) Load(c *router.Context) *Session {
	if s, ok := c.Get(contextKey); ok {
		return s.(*Session)
	}

	var sess *Session
	if cookieHeader := c.Request.Header.Get("Cookie"); cookieHeader != "" {
		if id, ok := parseCookieHeader(cookieHeader, m.cfg.CookieName); ok {
			if existing, found := m.store.Get(id); found {
				sess = existing
			}
		}
	}
	if sess == nil {
		id, err := generateID(m.cfg.IDLength)
		if err != nil {
			// crypto/rand failure is catastrophic; fall back to a
			// zero-value session rather than panicking the worker.
			id = ""
		}
		sess = newSession(id, m.cfg.Expiry)
	}
	c.Set(contextKey, sess)
	return sess
}

// FromContext retrieves the Session previously loaded by the Manager's
// middleware, or nil if none was loaded.
func FromContext(c *router.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		return v.(*Session)
	}
	return nil
}

// flush persists sess and emits Set-Cookie at response time, but only
// if the session was modified or newly created.
func (m *Manager) flush(c *router.Context, sess *Session) {
	if sess == nil || (!sess.Modified() && !sess.IsNew()) {
		return
	}
	sess.touch(m.cfg.Expiry)
	if err := m.store.Save(sess); err != nil {
		m.logger.Error("session: save failed", "error", err)
		return
	}
	sess.mu.Lock()
	sess.modified = false
	sess.isNew = false
	sess.mu.Unlock()
	c.Response.AddSetCookie(buildSetCookie(m.cfg, sess.ID(), m.cfg.Expiry, false))
}

// Middleware returns a router.HandlerFunc that loads the session before
// the handler chain runs and flushes it after.
func (m *Manager) Middleware() router.HandlerFunc {
	return func(c *router.Context) {
		m.Load(c)
		c.Next()
		m.flush(c, FromContext(c))
	}
}

// Invalidate destroys sess on the store and emits a delete-cookie
// response header.
func (m *Manager) Invalidate(c *router.Context, sess *Session) error {
	if err := m.store.Delete(sess.ID()); err != nil {
		return err
	}
	c.Response.AddSetCookie(buildSetCookie(m.cfg, "", 0, true))
	c.Set(contextKey, (*Session)(nil))
	return nil
}

// Regenerate allocates a new session id, copies sess's data to it, and
// destroys the old id atomically — used on login to prevent session
// fixation. The new Session becomes
// the one FromContext/flush operate on for the remainder of the request.
func (m *Manager) Regenerate(c *router.Context, sess *Session) (*Session, error) {
	newID, err := generateID(m.cfg.IDLength)
	if err != nil {
		return nil, err
	}
	fresh := sess.clone(newID, m.cfg.Expiry)
	if err := m.store.Save(fresh); err != nil {
		return nil, err
	}
	if err := m.store.Delete(sess.ID()); err != nil {
		return nil, err
	}
	c.Set(contextKey, fresh)
	c.Response.AddSetCookie(buildSetCookie(m.cfg, fresh.ID(), m.cfg.Expiry, false))
	return fresh, nil
}

// StartCleanup launches a background goroutine that sweeps the store at
// cfg.CleanupInterval cadence. Calling it more than once
// is a no-op; the returned func stops the sweep.
func (m *Manager) StartCleanup() func() {
	m.cleanupOnce.Do(func() {
		m.stopCleanup = make(chan struct{})
		go m.cleanupLoop()
	})
	return m.Stop
}

// Stop halts the background cleanup sweep, if running.
func (m *Manager) Stop() {
	if m.stopCleanup != nil {
		select {
		case <-m.stopCleanup:
		default:
			close(m.stopCleanup)
		}
	}
}

func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCleanup:
			return
		case now := <-ticker.C:
			n := m.store.Cleanup(now)
			if n > 0 {
				m.logger.Debug("session: cleanup sweep removed expired sessions", "count", n)
			}
		}
	}
}
