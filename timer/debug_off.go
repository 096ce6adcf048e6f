//go:build !martos_debug

package timer

// debugHandles is false in release builds: the finalizer-based
// leaked-handle detector in GetTimer adds GC overhead that's only worth
// paying for in debug builds (spec.md §4.B: "must be detectable in debug
// builds").
const debugHandles = false
