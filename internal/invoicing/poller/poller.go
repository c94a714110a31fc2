// Package poller schedules periodic queue drains.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/afip-einvoicing/internal/config"
	"github.com/afip-einvoicing/internal/invoicing/service"
	"github.com/panjf2000/ants/v2"
)

// Poller triggers queue drains on a fixed interval. Drains run on a
// non-blocking worker pool; a tick that lands while the pool is busy is
// dropped, the processing lock makes concurrent drains harmless anyway.
type Poller struct {
	processSvc   service.ProcessService
	pool         *ants.Pool
	logger       *slog.Logger
	pollInterval time.Duration
}

func NewPoller(
	cfg *config.DrainConfig,
	processSvc service.ProcessService,
	logger *slog.Logger,
) (*Poller, error) {
	pool, err := ants.NewPool(cfg.WorkerPoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &Poller{
		processSvc:   processSvc,
		pool:         pool,
		logger:       logger,
		pollInterval: cfg.PollInterval,
	}, nil
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting drain poller",
		"poll_interval", p.pollInterval.String(),
		"worker_pool_size", p.pool.Cap(),
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Drain poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			p.logger.Debug("Drain poller tick")
			if err := p.submitDrain(ctx); err != nil {
				p.logger.Error("Failed to submit drain to worker pool", "error", err)
			}
		}
	}
}

func (p *Poller) submitDrain(ctx context.Context) error {
	err := p.pool.Submit(func() {
		processed, err := p.processSvc.DrainQueue(ctx)
		if err != nil {
			p.logger.Error("Scheduled queue drain failed", "processed", processed, "error", err)
			return
		}
		if processed > 0 {
			p.logger.Info("Scheduled queue drain completed", "processed", processed)
		}
	})
	if errors.Is(err, ants.ErrPoolOverload) {
		// A drain from a previous tick is still running.
		p.logger.Debug("Worker pool busy, skipping drain tick")
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the worker pool.
func (p *Poller) Shutdown() {
	p.logger.Info("Shutting down drain poller", "running_workers", p.pool.Running())
	p.pool.Release()
}
