// Package martos wires together a node's subsystems — the hardware
// port, the timer service, one executor, and the time-sync manager —
// into a single process-wide Runtime, constructed once from cmd/martosctl's
// main(). Grounded on the teacher's top-level caddy.go, which holds the
// single package-level Context/App registry every other package in the
// module reaches into; martos.Runtime plays the same "one well-defined
// cell of global state" role spec.md §9 calls for, without resorting to
// actual package-level mutable globals.
package martos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/martos-project/martos/admin"
	"github.com/martos-project/martos/config"
	"github.com/martos-project/martos/executor/cooperative"
	"github.com/martos-project/martos/executor/preemptive"
	"github.com/martos-project/martos/port"
	"github.com/martos-project/martos/syncmgr"
	"github.com/martos-project/martos/syncmgr/transport/udpbroadcast"
	"github.com/martos-project/martos/timer"
)

// Runtime is the fully constructed set of subsystems for one node.
// Exactly one Runtime exists per process.
type Runtime struct {
	ID     uuid.UUID
	Config config.Node
	Log    *zap.Logger

	Port      port.Port
	Timer     *timer.Service
	Sync      *syncmgr.Manager
	Admin     *admin.Server
	transport *udpbroadcast.Transport

	Cooperative *cooperative.Executor
	Preemptive  *preemptive.Scheduler
}

// New constructs a Runtime from cfg, binding its sync manager to a live
// UDP broadcast transport at cfg.ListenAddr/cfg.BroadcastAddr. p is the
// architecture port selected at compile time by build tag.
func New(cfg config.Node, p port.Port, log *zap.Logger) (*Runtime, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := p.InitHeap(); err != nil {
		return nil, fmt.Errorf("martos: init heap: %w", err)
	}
	if err := p.SetupHardwareTimer(); err != nil {
		return nil, fmt.Errorf("martos: setup hardware timer: %w", err)
	}

	transport, err := udpbroadcast.Dial(cfg.ListenAddr, cfg.BroadcastAddr)
	if err != nil {
		return nil, fmt.Errorf("martos: dial sync transport: %w", err)
	}

	timerSvc := timer.New(p, 4, log)
	syncMgr := syncmgr.New(cfg.SyncConfig(), transport, log)

	rt := &Runtime{
		ID:        uuid.New(),
		Config:    cfg,
		Log:       log.Named("martos"),
		Port:      p,
		Timer:     timerSvc,
		Sync:      syncMgr,
		transport: transport,
	}

	switch cfg.Executor {
	case config.ExecutorPreemptive:
		pp, ok := p.(port.PreemptivePort)
		if !ok {
			return nil, fmt.Errorf("martos: preemptive executor requested but port does not support it")
		}
		rt.Preemptive = preemptive.NewScheduler(pp)
	default:
		rt.Cooperative = cooperative.New()
	}

	rt.Admin = admin.New(rt.Sync, rt.Cooperative, log)
	return rt, nil
}

// Close releases the runtime's network transport.
func (r *Runtime) Close() error {
	if r.transport != nil {
		return r.transport.Close()
	}
	return nil
}

// Run starts the sync manager's cycle loop and, if configured, the
// preemptive scheduler's periodic interrupt. It blocks until ctx is
// cancelled. The cooperative executor (if selected) is driven separately
// by the caller via r.Cooperative.Start, since its tasks are typically
// added by application code after Runtime construction.
func (r *Runtime) Run(ctx context.Context) error {
	r.Sync.Enable()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Sync.Run(ctx, r.Port.GetTime)
	}()

	if r.Preemptive != nil {
		go func() {
			errCh <- r.Preemptive.Start(ctx, r.Config.TimeSlice())
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
