package port

import (
	"fmt"
	"sync/atomic"
)

// BumpAllocator is a fixed-region, never-reclaiming allocator: every
// allocation advances a monotonic offset with alignment rounding; Free is
// a documented no-op. Tasks are created once at startup on these targets,
// so full reclamation buys nothing but fragmentation risk on a heap that
// may be as small as 32 KiB.
type BumpAllocator struct {
	region []byte
	next   atomic.Uint64 // offset into region
}

// NewBumpAllocator wraps a fixed-size backing region. size is typically
// 32*1024 (Xtensa default) or 64*1024 (MIPS64 default); the sim port lets
// callers pick a size to match whatever scenario they're simulating.
func NewBumpAllocator(size int) *BumpAllocator {
	return &BumpAllocator{region: make([]byte, size)}
}

// Alloc reserves size bytes aligned to align (must be a power of two) and
// returns a slice over the backing region. Returns ErrOutOfMemory — never
// panics — if the allocation would exceed the region.
func (b *BumpAllocator) Alloc(size, align int) ([]byte, error) {
	for {
		cur := b.next.Load()
		aligned := (cur + uint64(align) - 1) &^ (uint64(align) - 1)
		newNext := aligned + uint64(size)
		if newNext > uint64(len(b.region)) {
			return nil, ErrOutOfMemory
		}
		if b.next.CompareAndSwap(cur, newNext) {
			return b.region[aligned:newNext:newNext], nil
		}
	}
}

// Free is a no-op: the bump allocator never reclaims memory.
func (b *BumpAllocator) Free([]byte) {}

// Stats reports allocator usage for diagnostics (admin API, CLI output).
type AllocatorStats struct {
	Capacity int
	Used     int
}

func (b *BumpAllocator) Stats() AllocatorStats {
	return AllocatorStats{Capacity: len(b.region), Used: int(b.next.Load())}
}

func (s AllocatorStats) String() string {
	return fmt.Sprintf("%d/%d bytes used", s.Used, s.Capacity)
}
