//go:build xtensa || riscv32

package port

import (
	"sync"
	"time"
)

// StackWriter pokes a 32-bit word at an address in a task's stack region.
// Real memory-mapped access to a task stack (and to the timer-group and
// interrupt-controller registers these ports use) is a per-chip concern
// that spec.md §1 places out of scope ("per-chip peripheral bring-up...
// thin adaptors"); Xtensa and RiscV32 wire through the hooks a
// board-support package is expected to install before
// SetupHardwareTimer/InstallPeriodicInterrupt are called, so the in-scope
// part — the register-frame layout and the bump allocator — compiles and
// is testable independent of that shim.
type StackWriter func(addr uintptr, v uint32)

var (
	hookMu          sync.Mutex
	xtensaWriteWord StackWriter
	xtensaTimerRead func() time.Duration
	xtensaTimerArm  func(period time.Duration, onTick func())
)

// InstallHooks wires a board-support shim's timer and stack-write
// primitives into this port. Must be called once before SetupHardwareTimer
// or AddTask on the preemptive executor.
func InstallHooks(write StackWriter, timerRead func() time.Duration, timerArm func(time.Duration, func())) {
	hookMu.Lock()
	defer hookMu.Unlock()
	xtensaWriteWord, xtensaTimerRead, xtensaTimerArm = write, timerRead, timerArm
}
