package workerpool

import (
	"context"
	"runtime"
	"sync"

	"github.com/kilnhttp/kiln/pkg/kiln/app"
	"github.com/kilnhttp/kiln/pkg/kiln/conn"
	"github.com/kilnhttp/kiln/pkg/kiln/listener"
)

// Config bundles the worker-pool sizing options: the number of
// workers (default = logical CPU count) and the per-worker connection
// ceiling.
type Config struct {
	Workers              int
	ConnectionsPerWorker int
	Limits               conn.Limits
}

// DefaultConfig returns the package defaults: one worker per logical CPU
// and 64 connections per worker.
func DefaultConfig() Config {
	return Config{
		Workers:              runtime.GOMAXPROCS(0),
		ConnectionsPerWorker: 64,
		Limits:               conn.DefaultLimits(),
	}
}

// Pool is a fixed set of workers sharing one listener set and one App.
// The spec does not mandate OS-thread count; this rendition spawns one
// goroutine tree per worker rather than pinning OS threads, since Go's
// scheduler — not the framework — owns the decision of how goroutines map
// onto Ms and Ps.
type Pool struct {
	workers   []*Worker
	listeners *listener.Set
}

// New creates a Pool of cfg.Workers workers, all sharing listeners.
func New(a app.App, listeners *listener.Set, cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	workers := make([]*Worker, cfg.Workers)
	for i := range workers {
		workers[i] = NewWorker(i, a, listeners, cfg.Limits, cfg.ConnectionsPerWorker)
	}
	return &Pool{workers: workers, listeners: listeners}
}

// Run starts every worker and blocks until ctx is cancelled and every
// worker's accept loops have exited. Cancellation is only observed once
// the blocking Accept calls return, which Run forces by closing the
// listener set after ctx is done.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}
	<-ctx.Done()
	p.listeners.Close()
	wg.Wait()
}
