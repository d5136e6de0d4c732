package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-outbox/internal/adapter"
	"github.com/MKhiriev/go-outbox/internal/logger"
)

type connectivityMonitor struct {
	adapter  adapter.ServerAdapter
	interval time.Duration

	mu        sync.Mutex
	online    bool
	listeners []func(bool)

	logger *logger.Logger
}

// NewConnectivityMonitor returns a [ConnectivitySignal] that starts offline
// and follows the result of probing serverAdapter every interval.
func NewConnectivityMonitor(serverAdapter adapter.ServerAdapter, interval time.Duration, logger *logger.Logger) ConnectivitySignal {
	return &connectivityMonitor{adapter: serverAdapter, interval: interval, logger: logger}
}

func (c *connectivityMonitor) IsOnline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

func (c *connectivityMonitor) OnChange(fn func(online bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *connectivityMonitor) SetOnline(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	c.logger.Info().
		Str("func", "connectivityMonitor.SetOnline").
		Bool("online", online).
		Msg("connectivity changed")

	for _, fn := range listeners {
		fn(online)
	}
}

// Run implements [ConnectivitySignal]. The first probe happens immediately.
func (c *connectivityMonitor) Run(ctx context.Context) error {
	interval := c.interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	c.probe(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			c.probe(ctx)
		}
	}
}

func (c *connectivityMonitor) probe(ctx context.Context) {
	err := c.adapter.Ping(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.logger.Debug().Err(err).
			Str("func", "connectivityMonitor.probe").
			Msg("backend unreachable")
	}
	c.SetOnline(err == nil)
}
