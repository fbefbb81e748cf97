// Package worker provides goroutine pool management.
//
// Background work goes through a Pool with context propagation; code outside
// main and tests does not start naked goroutines.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"warden.dev/warden/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission.
type Pool struct {
	pool *ants.Pool
	name string
}

// Pools is the Worker pool collection.
type Pools struct {
	General *Pool

	// serviceCtx is the service lifecycle context for detached tasks
	serviceCtx    context.Context
	serviceCancel context.CancelFunc
}

// PoolConfig contains Worker Pool configuration.
type PoolConfig struct {
	GeneralPoolSize int
}

// DefaultPoolConfig returns default configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{GeneralPoolSize: 20}
}

// NewPools creates Worker pool collection.
func NewPools(ctx context.Context, cfg PoolConfig) (*Pools, error) {
	if cfg.GeneralPoolSize <= 0 {
		cfg.GeneralPoolSize = DefaultPoolConfig().GeneralPoolSize
	}
	serviceCtx, serviceCancel := context.WithCancel(ctx)

	panicHandler := func(p interface{}) {
		logger.Error("Worker panic recovered",
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
	}

	generalAnts, err := ants.NewPool(cfg.GeneralPoolSize,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		serviceCancel()
		return nil, err
	}

	return &Pools{
		General:       &Pool{pool: generalAnts, name: "general"},
		serviceCtx:    serviceCtx,
		serviceCancel: serviceCancel,
	}, nil
}

// Submit submits a context-aware task.
// The task receives the caller's context and should check ctx.Done() at blocking points.
// If the context is already cancelled, returns ctx.Err() without submitting.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if p.pool.IsClosed() {
		return ErrPoolClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := p.pool.Submit(func() {
		// May have been cancelled while waiting for a worker.
		select {
		case <-ctx.Done():
			logger.Debug("Task skipped: context cancelled",
				zap.String("pool", p.name),
				zap.Error(ctx.Err()),
			)
			return
		default:
		}
		task(ctx)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Running returns the number of busy workers.
func (p *Pool) Running() int { return p.pool.Running() }

// Free returns the number of idle worker slots.
func (p *Pool) Free() int { return p.pool.Free() }

// Cap returns the pool capacity.
func (p *Pool) Cap() int { return p.pool.Cap() }

// SubmitDetached submits a task bound to the service lifecycle context instead
// of a request context. Detached tasks survive request cancellation.
func (p *Pools) SubmitDetached(task Task) error {
	return p.General.Submit(p.serviceCtx, task)
}

// Shutdown closes the pools and waits for running tasks (max 30s), then
// cancels the service context.
func (p *Pools) Shutdown() {
	const shutdownTimeout = 30 * time.Second
	if err := p.General.pool.ReleaseTimeout(shutdownTimeout); err != nil {
		logger.Warn("General pool shutdown timeout", zap.Error(err))
	}
	p.serviceCancel()
}

// All returns every pool, for metrics registration.
func (p *Pools) All() []*Pool {
	return []*Pool{p.General}
}
