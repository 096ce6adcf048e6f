//go:build mips64

package port

import (
	"sync"
	"time"
)

// Fixed memory-mapped addresses for the five-timer block (spec.md §4.A).
// Kept as documented constants even though this port reads time through
// TimerRead (see below) rather than touching these addresses directly —
// raw MMIO is, like the interrupt controller on Xtensa/RISC-V, a per-chip
// bring-up concern out of scope per spec.md §1.
const (
	Timer0Addr             uint64 = 0x01B400080
	Timer1Addr             uint64 = 0x01B400090
	Timer2Addr             uint64 = 0x01B4000A0
	Timer3Addr             uint64 = 0x01B4000B0
	Timer4Addr             uint64 = 0x01B4000C0
	ConfigurationRegisters uint64 = 0x01B4000D0
	StatusControlOffset    uint64 = 0x08
	TimerFrequencyMHz      uint64 = 4
)

var (
	mips64Mu        sync.Mutex
	mips64TimerRead func() time.Duration
)

// InstallTimerHook wires the board-support shim's timer-read primitive
// (polling the update-in-progress bit per spec.md §4.A) into this port.
func InstallTimerHook(read func() time.Duration) {
	mips64Mu.Lock()
	defer mips64Mu.Unlock()
	mips64TimerRead = read
}

// Mips64 implements Port (cooperative-only — this target never runs the
// preemptive executor in the reference design) with a 64 KiB bump-allocator
// heap, the reference design's MIPS64 default.
type Mips64 struct {
	peripherals *Peripherals
	alloc       *BumpAllocator
}

func NewMips64() *Mips64 {
	return &Mips64{peripherals: NewPeripherals(), alloc: NewBumpAllocator(64 * 1024)}
}

func (m *Mips64) InitHeap() error { return m.peripherals.Take("heap") }

func (m *Mips64) SetupHardwareTimer() error {
	if err := m.peripherals.Take("timer0"); err != nil {
		return err
	}
	if mips64TimerRead == nil {
		return ErrTimerNotReady
	}
	return nil
}

// saturatingTicks converts a duration to ticks at TimerFrequencyMHz,
// saturating at the 64-bit boundary rather than wrapping (spec.md §4.A).
func saturatingTicks(d time.Duration) uint64 {
	us := d.Microseconds()
	if us < 0 {
		return 0
	}
	ticks := uint64(us) * TimerFrequencyMHz
	if ticks < uint64(us) {
		return ^uint64(0) // overflow: saturate
	}
	return ticks
}

func (m *Mips64) GetTime() time.Duration {
	if mips64TimerRead == nil {
		return 0
	}
	return mips64TimerRead()
}

func (m *Mips64) Allocator() *BumpAllocator { return m.alloc }
