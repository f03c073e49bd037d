// Package shutdown runs registered cleanup steps when the tracker stops.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"vidsphere/internal/pkg/errors"
	"vidsphere/internal/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Manager runs cleanup handlers in reverse registration order, so resources
// opened first (database pools) are released after the things that use them
// (HTTP server).
type Manager struct {
	log      *logger.Logger
	timeout  time.Duration
	mu       sync.Mutex
	handlers []handler
	once     sync.Once
	err      error
}

type handler struct {
	name    string
	cleanup func(ctx context.Context) error
}

func NewManager(log *logger.Logger, timeout time.Duration) *Manager {
	if log == nil {
		log = logger.NewDefault()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Manager{log: log.WithComponent("shutdown"), timeout: timeout}
}

func (m *Manager) Register(name string, cleanup func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler{name: name, cleanup: cleanup})
}

// Wait blocks until SIGINT/SIGTERM or ctx is done, then shuts down.
func (m *Manager) Wait(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	if ctx.Err() != nil {
		m.log.Info("context canceled, initiating shutdown")
	} else {
		m.log.Info("shutdown signal received")
	}
	return m.Shutdown()
}

// Shutdown runs every handler once, sharing a single deadline. A failing
// handler does not stop the rest. Later calls return the first result.
func (m *Manager) Shutdown() error {
	m.once.Do(func() {
		m.mu.Lock()
		handlers := append([]handler(nil), m.handlers...)
		m.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		m.log.Info("starting graceful shutdown", "handlers", len(handlers), "timeout", m.timeout.String())

		var errs []error
		for i := len(handlers) - 1; i >= 0; i-- {
			h := handlers[i]
			start := time.Now()
			if err := h.cleanup(ctx); err != nil {
				m.log.Error("shutdown handler failed",
					"name", h.name,
					"error", err.Error(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
				errs = append(errs, errors.Wrap(err, "shutdown."+h.name, h.name+" cleanup failed"))
				continue
			}
			m.log.Debug("shutdown handler completed",
				"name", h.name,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
		if ctx.Err() != nil {
			m.log.Warn("shutdown timeout exceeded")
		}
		m.err = errors.Join(errs...)
	})
	return m.err
}
