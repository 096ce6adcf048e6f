//go:build !xtensa && !riscv32 && !mips64

package port

import (
	"time"
)

// Sim is the host simulation port: it backs the martos binary, its test
// suite, and the local multi-node simulator on development machines where
// no Xtensa/RISC-V/MIPS64 silicon is present. It implements the same
// register-frame contract the hardware ports document (see port_xtensa.go
// and port_riscv32.go for the real layouts this mirrors) against a
// software register bank, so scheduler logic above it is exercised
// exactly as it would be on real hardware.
type Sim struct {
	peripherals *Peripherals
	alloc       *BumpAllocator
	setupAt     time.Time
	isr         RegisterFrame
	stop        chan struct{}
}

// Register slots used by Sim's SetupInitialFrame, mirroring the Xtensa
// window-ABI argument placement (A1/A6/A7/A8) documented in spec.md §4.A.
const (
	simRegA0    = 0 // return address
	simRegSP    = 1 // stack pointer
	simRegSetup = 6 // setup_fn
	simRegLoop  = 7 // loop_fn
	simRegStop  = 8 // stop_fn
)

// NewSim constructs a simulation port with a heapSize-byte bump allocator.
func NewSim(heapSize int) *Sim {
	return &Sim{
		peripherals: NewPeripherals(),
		alloc:       NewBumpAllocator(heapSize),
		stop:        make(chan struct{}),
	}
}

func (s *Sim) InitHeap() error {
	return s.peripherals.Take("heap")
}

func (s *Sim) SetupHardwareTimer() error {
	if err := s.peripherals.Take("timer0"); err != nil {
		return err
	}
	s.setupAt = time.Now()
	return nil
}

func (s *Sim) GetTime() time.Duration {
	if s.setupAt.IsZero() {
		return 0
	}
	return time.Since(s.setupAt)
}

func (s *Sim) Allocator() *BumpAllocator { return s.alloc }

// InstallPeriodicInterrupt starts a goroutine standing in for the
// hardware's periodic interrupt source, calling handler with the port's
// single ISR-saved register frame on every tick.
func (s *Sim) InstallPeriodicInterrupt(period time.Duration, handler InterruptHandler) error {
	if err := s.peripherals.Take("periodic_interrupt"); err != nil {
		return err
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				handler(&s.isr)
			case <-s.stop:
				return
			}
		}
	}()
	return nil
}

// StopInterrupt halts the goroutine started by InstallPeriodicInterrupt.
// Not part of PreemptivePort — real hardware has no such escape hatch —
// but tests and the simulator CLI need a clean way to tear the sim down.
func (s *Sim) StopInterrupt() {
	close(s.stop)
}

func (s *Sim) SetupInitialFrame(frame *RegisterFrame, entryPC, stackTop, setupFn, loopFn, stopFn uintptr) {
	frame.PC = entryPC
	frame.Status = 0x00040000 | ((1 & 3) << 16)
	frame.GPR[simRegSP] = stackTop
	frame.GPR[simRegSetup] = setupFn
	frame.GPR[simRegLoop] = loopFn
	frame.GPR[simRegStop] = stopFn
	frame.GPR[simRegA0] = 0
	// Real ports additionally zero the top 16 bytes of the stack and lay
	// down a back-link word at stackTop-12 (window-ABI frame). Sim models
	// only the register bank: its task stacks are Go-allocated buffers
	// with no hardware stack-walk to satisfy.
}

func (s *Sim) SaveFrame(dst *RegisterFrame, isrSrc *RegisterFrame) {
	*dst = *isrSrc
}

func (s *Sim) LoadFrame(src *RegisterFrame, isrDst *RegisterFrame) {
	*isrDst = *src
}
