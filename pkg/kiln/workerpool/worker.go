package workerpool

import (
	"context"
	"sync"

	"github.com/kilnhttp/kiln/pkg/kiln/app"
	"github.com/kilnhttp/kiln/pkg/kiln/conn"
	"github.com/kilnhttp/kiln/pkg/kiln/listener"
)

// Worker is one unit of concurrency in the pool: one goroutine set running a
// cooperative accept loop per listener, sharing one Admission tracker so
// the worker as a whole never exceeds its connection ceiling. A
// connection is bound to the worker that accepted it for its entire
// lifetime; no cross-worker hand-off happens.
type Worker struct {
	id        int
	app       app.App
	listeners *listener.Set
	limits    conn.Limits
	admission *Admission
}

// NewWorker creates a Worker with its own admission tracker, bounded by
// maxConnections (connections_per_worker).
func NewWorker(id int, a app.App, listeners *listener.Set, limits conn.Limits, maxConnections int) *Worker {
	return &Worker{
		id:        id,
		app:       a,
		listeners: listeners,
		limits:    limits,
		admission: NewAdmission(maxConnections),
	}
}

// Run drives one accept loop per listener in the set until ctx is
// cancelled, blocking until every accept loop has exited.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.listeners.Len(); i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			w.acceptLoop(ctx, idx)
		}(i)
	}
	wg.Wait()
}

// acceptLoop implements the worker's per-listener accept step: wait
// for an admission slot, accept, invoke on_connect, and on acceptance
// spawn the connection's state machine in its own goroutine.
func (w *Worker) acceptLoop(ctx context.Context, listenerIdx int) {
	for {
		if ctx.Err() != nil {
			return
		}

		w.admission.Wait()

		accepted, err := w.listeners.Accept(listenerIdx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.app.OnAcceptError(err)
			continue
		}

		state, ok := w.app.OnConnect(accepted.Conn.RemoteAddr().String())
		if !ok {
			accepted.Conn.Close()
			continue
		}

		w.admission.Acquire()
		go w.serve(accepted, state)
	}
}

func (w *Worker) serve(accepted listener.Accepted, state any) {
	defer w.admission.Release()
	c := conn.New(accepted.Conn, w.app, w.limits, state)
	c.Serve()
}
