// Package port defines the hardware abstraction every martos target must
// implement: heap bring-up, the monotonic hardware timer, and (on targets
// that run the preemptive executor) periodic-interrupt installation plus
// CPU register-frame save/restore.
//
// Exactly one implementation is compiled into a given binary, selected by
// build tag (xtensa, riscv32, mips64) rather than chosen at runtime — per
// the project's design notes, architecture selection is a compile-time
// concern, not a dynamic-dispatch one. The default build (no arch tag)
// pulls in the sim port, which backs the host binary, its tests, and the
// local multi-node simulator.
package port

import (
	"errors"
	"time"
)

// Errors returned by Port implementations. Callers compare with errors.Is.
var (
	ErrOutOfMemory   = errors.New("port: bump allocator exhausted")
	ErrAlreadyTaken  = errors.New("port: peripheral already taken")
	ErrTimerNotReady = errors.New("port: hardware timer not set up")
)

// Port is the capability set every architecture must provide.
type Port interface {
	// InitHeap installs the process-wide bump allocator. Called at most
	// once; a second call returns ErrAlreadyTaken.
	InitHeap() error

	// SetupHardwareTimer claims and programs the monotonic hardware
	// timer. Called at most once; a second call returns ErrAlreadyTaken.
	SetupHardwareTimer() error

	// GetTime returns elapsed time since SetupHardwareTimer, monotonic
	// non-decreasing across calls.
	GetTime() time.Duration

	// Allocator exposes the bump allocator backing this port, for tasks
	// that need raw memory (e.g. preemptive task stacks).
	Allocator() *BumpAllocator
}

// PreemptivePort extends Port with the capabilities the time-sliced
// executor needs: a periodic interrupt source and register-frame
// save/load/initialize. Not every target supports this — mips64, in this
// system, only ever runs the cooperative executor.
type PreemptivePort interface {
	Port

	// InstallPeriodicInterrupt arms a periodic interrupt at priority 1.
	// handler is invoked with the ISR-saved register frame on every tick.
	InstallPeriodicInterrupt(period time.Duration, handler InterruptHandler) error

	// SetupInitialFrame lays down a register snapshot such that, the
	// first time it is loaded, execution resumes at entryPC with
	// stackTop as the stack pointer and setupFn/loopFn/stopFn already
	// placed in the architecture's designated argument slots.
	SetupInitialFrame(frame *RegisterFrame, entryPC, stackTop, setupFn, loopFn, stopFn uintptr)

	// SaveFrame bit-copies the ISR-saved register snapshot into dst.
	SaveFrame(dst *RegisterFrame, isrSrc *RegisterFrame)

	// LoadFrame bit-copies src into the ISR-saved register snapshot, so
	// that on interrupt return execution resumes in that frame's task.
	LoadFrame(src *RegisterFrame, isrDst *RegisterFrame)
}

// InterruptHandler is invoked on every periodic-timer tick with a mutable
// reference to the interrupt-saved register frame.
type InterruptHandler func(isr *RegisterFrame)

// DefaultSlice is the default preemption time slice (spec.md §4.A).
const DefaultSlice = 1000 * time.Millisecond

// RegisterFrame is an architecture-agnostic register snapshot. Each
// PreemptivePort implementation documents which GPR indices it uses as
// stack pointer / argument registers; see the per-arch constants in
// port_xtensa.go, port_riscv32.go, and port_sim.go.
type RegisterFrame struct {
	PC     uintptr
	Status uint32
	GPR    [16]uintptr
}
