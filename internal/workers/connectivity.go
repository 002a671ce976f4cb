// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
)

// DefaultConnectivityInterval is used when a non-positive interval is
// configured.
const DefaultConnectivityInterval = 15 * time.Second

// pingTimeout bounds a single probe so a hanging remote reads as offline.
const pingTimeout = 5 * time.Second

// ConnectivityMonitor tracks whether the remote store is reachable by
// pinging it periodically. It starts optimistic: Online is true until a
// probe fails.
type ConnectivityMonitor struct {
	pinger   Pinger
	interval time.Duration
	logger   *logger.Logger

	online atomic.Bool

	hooksMu sync.RWMutex
	hooks   []func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConnectivityMonitor returns an idle monitor. A nil pinger makes the
// monitor report online forever.
func NewConnectivityMonitor(pinger Pinger, interval time.Duration, log *logger.Logger) *ConnectivityMonitor {
	if interval <= 0 {
		interval = DefaultConnectivityInterval
	}
	m := &ConnectivityMonitor{pinger: pinger, interval: interval, logger: log}
	m.online.Store(true)
	return m
}

// Online reports the outcome of the last probe.
func (m *ConnectivityMonitor) Online() bool {
	return m.online.Load()
}

// OnReconnect registers fn to run every time the remote store becomes
// reachable again. Hooks run on the monitor goroutine, one after another.
func (m *ConnectivityMonitor) OnReconnect(fn func(ctx context.Context)) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Check probes the remote store once, records the result and runs the
// reconnect hooks on an offline to online transition.
func (m *ConnectivityMonitor) Check(ctx context.Context) bool {
	if m.pinger == nil {
		return true
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := m.pinger.Ping(pingCtx)
	cancel()

	online := err == nil
	was := m.online.Swap(online)

	switch {
	case was && !online:
		m.logger.Warn().Err(err).Str("func", "ConnectivityMonitor.Check").Msg("remote store unreachable, working offline")
	case !was && online:
		m.logger.Info().Str("func", "ConnectivityMonitor.Check").Msg("remote store reachable again")
		m.runHooks(ctx)
	}
	return online
}

func (m *ConnectivityMonitor) runHooks(ctx context.Context) {
	m.hooksMu.RLock()
	hooks := append([]func(context.Context){}, m.hooks...)
	m.hooksMu.RUnlock()

	for _, hook := range hooks {
		if ctx.Err() != nil {
			return
		}
		hook(ctx)
	}
}

// Start implements Worker. It probes immediately, then every interval.
func (m *ConnectivityMonitor) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.Check(jobCtx)

		t := time.NewTicker(m.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				m.Check(jobCtx)
			}
		}
	}()
}

// Stop implements Worker.
func (m *ConnectivityMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}
