package api

import (
	"context"
	"sync/atomic"
)

// WorkerPool bounds concurrent request processing. Game commands are
// cheap and share a wide semaphore; game creation (which allocates a
// session and may kick off an automated faceoff) goes through a narrow
// one.
type WorkerPool struct {
	commandSem chan struct{}
	createSem  chan struct{}

	activeCommands int64
	activeCreates  int64
	totalCommands  int64
	totalCreates   int64
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxCommandWorkers int // max concurrent game commands (default: 256)
	MaxCreateWorkers  int // max concurrent game creations (default: 16)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxCommandWorkers: 256,
		MaxCreateWorkers:  16,
	}
}

// NewWorkerPool creates a worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	if config.MaxCommandWorkers <= 0 {
		config.MaxCommandWorkers = 256
	}
	if config.MaxCreateWorkers <= 0 {
		config.MaxCreateWorkers = 16
	}
	return &WorkerPool{
		commandSem: make(chan struct{}, config.MaxCommandWorkers),
		createSem:  make(chan struct{}, config.MaxCreateWorkers),
	}
}

// AcquireCommand acquires a slot for a game command, or fails when the
// context is cancelled while waiting.
func (p *WorkerPool) AcquireCommand(ctx context.Context) error {
	select {
	case p.commandSem <- struct{}{}:
		atomic.AddInt64(&p.activeCommands, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseCommand releases a command slot.
func (p *WorkerPool) ReleaseCommand() {
	atomic.AddInt64(&p.activeCommands, -1)
	atomic.AddInt64(&p.totalCommands, 1)
	<-p.commandSem
}

// AcquireCreate acquires a slot for game creation.
func (p *WorkerPool) AcquireCreate(ctx context.Context) error {
	select {
	case p.createSem <- struct{}{}:
		atomic.AddInt64(&p.activeCreates, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseCreate releases a creation slot.
func (p *WorkerPool) ReleaseCreate() {
	atomic.AddInt64(&p.activeCreates, -1)
	atomic.AddInt64(&p.totalCreates, 1)
	<-p.createSem
}

// PoolStats reports current pool usage.
type PoolStats struct {
	ActiveCommands int64 `json:"active_commands"`
	ActiveCreates  int64 `json:"active_creates"`
	TotalCommands  int64 `json:"total_commands"`
	TotalCreates   int64 `json:"total_creates"`
}

// Stats returns a snapshot of pool usage.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveCommands: atomic.LoadInt64(&p.activeCommands),
		ActiveCreates:  atomic.LoadInt64(&p.activeCreates),
		TotalCommands:  atomic.LoadInt64(&p.totalCommands),
		TotalCreates:   atomic.LoadInt64(&p.totalCreates),
	}
}
