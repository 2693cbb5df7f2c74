// Package health runs periodic dependency probes and caches an aggregate
// service health flag. The flag gates startup and feeds operational logs;
// request-path health reporting stays synchronous in the HTTP handler.
package health

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Pinger is implemented by dependencies that expose a health probe.
// HealthPing must return nil when the component is healthy.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

// Probe pairs a dependency name with its pinger for log attribution.
type Probe struct {
	Name   string
	Pinger Pinger
}

// Monitor evaluates probes on an interval and caches the aggregate result.
type Monitor struct {
	healthy      atomic.Bool
	probes       []Probe
	probeTimeout time.Duration
	log          zerolog.Logger
}

// NewMonitor builds a monitor; the flag starts unhealthy until the first
// evaluation completes.
func NewMonitor(log zerolog.Logger, probeTimeout time.Duration, probes ...Probe) *Monitor {
	return &Monitor{probes: probes, probeTimeout: probeTimeout, log: log}
}

// IsHealthy returns the cached aggregate health.
func (m *Monitor) IsHealthy() bool { return m.healthy.Load() }

// Start evaluates all probes immediately and then on every tick, logging
// transitions. Blocks until ctx is cancelled; run it in a goroutine.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := false
	eval := func() {
		all := true
		for _, p := range m.probes {
			probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
			err := p.Pinger.HealthPing(probeCtx)
			cancel()
			if err != nil {
				all = false
				m.log.Warn().Err(err).Str("dependency", p.Name).Msg("health probe failed")
			}
		}
		m.healthy.Store(all)
		if all != prev {
			if all {
				m.log.Info().Msg("service health: UP")
			} else {
				m.log.Error().Msg("service health: DOWN")
			}
			prev = all
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}

// WaitUntilHealthy blocks until the monitor reports healthy or the deadline
// expires; used to fail fast at startup.
func (m *Monitor) WaitUntilHealthy(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if m.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
