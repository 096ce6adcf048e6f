// Package timer implements the Timer Service (spec.md §4.B): a small,
// fixed-size table of logical timer slots over a single hardware timer
// block, each acquired at most once via compare-and-swap on a per-index
// busy flag.
package timer

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/martos-project/martos/port"
)

// ErrTimerBusy is returned by GetTimer when the requested index is
// already acquired by another owner.
var ErrTimerBusy = errors.New("timer: slot already acquired")

// ErrIndexRange is returned by GetTimer for an out-of-range index.
var ErrIndexRange = errors.New("timer: index out of range")

// Service exposes a configurable number of logical timers backed by a
// single port.Port. Debug builds (-tags martos_debug) detect handles that
// are garbage-collected without Release having been called.
type Service struct {
	p     port.Port
	log   *zap.Logger
	slots []slot
}

type slot struct {
	busy   atomic.Bool
	period time.Duration
	mu     sync.Mutex
	epoch  time.Duration // port time at which this slot was (re)started
	paused time.Duration // accumulated elapsed time while running before the current epoch
	running bool
}

// New constructs a Service with n logical timer slots over p.
func New(p port.Port, n int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{p: p, log: log.Named("timer"), slots: make([]slot, n)}
}

// Handle is the at-most-one-owner acquisition of a logical timer slot.
// Release is mandatory before the handle is dropped (spec.md §4.B).
type Handle struct {
	svc       *Service
	index     int
	released  atomic.Bool
}

// GetTimer returns a Handle for index only if it is not currently
// acquired; otherwise ErrTimerBusy.
func (s *Service) GetTimer(index int) (*Handle, error) {
	if index < 0 || index >= len(s.slots) {
		return nil, ErrIndexRange
	}
	sl := &s.slots[index]
	if !sl.busy.CompareAndSwap(false, true) {
		return nil, ErrTimerBusy
	}
	h := &Handle{svc: s, index: index}
	if debugHandles {
		runtime.SetFinalizer(h, func(h *Handle) {
			if !h.released.Load() {
				s.log.Error("timer handle garbage-collected without Release",
					zap.Int("index", h.index))
			}
		})
	}
	return h, nil
}

// GetTime returns elapsed time accumulated while this timer has been
// running.
func (h *Handle) GetTime() time.Duration {
	sl := &h.svc.slots[h.index]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if !sl.running {
		return sl.paused
	}
	return sl.paused + (h.svc.p.GetTime() - sl.epoch)
}

// ChangePeriod reconfigures the slot's period without affecting whether
// it is currently running.
func (h *Handle) ChangePeriod(period time.Duration) {
	sl := &h.svc.slots[h.index]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.period = period
}

// Start begins (or resumes) ticking.
func (h *Handle) Start() {
	sl := &h.svc.slots[h.index]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.running {
		return
	}
	sl.epoch = h.svc.p.GetTime()
	sl.running = true
}

// Stop halts ticking and returns whether the timer had been running.
func (h *Handle) Stop() bool {
	sl := &h.svc.slots[h.index]
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if !sl.running {
		return false
	}
	sl.paused += h.svc.p.GetTime() - sl.epoch
	sl.running = false
	return true
}

// Release gives up ownership of the slot, making it available to a future
// GetTimer call.
func (h *Handle) Release() {
	if h.released.CompareAndSwap(false, true) {
		h.svc.slots[h.index].busy.Store(false)
	}
}
