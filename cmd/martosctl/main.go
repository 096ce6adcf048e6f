// Command martosctl is the host-side entry point for a martos node: it
// loads a node's TOML configuration, brings up the simulation port
// (port.NewSim, which exists only in the default build without an
// architecture tag), and runs the time-sync manager and the configured
// executor until interrupted.
//
// Grounded on the teacher's cmd/caddy/main.go (a thin main that delegates
// immediately into a cobra-based command tree) and cmd/cobra.go (runtime
// tuning via automaxprocs/automemlimit performed once at startup, before
// any subcommand body runs).
package main

import (
	"fmt"
	"os"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	// GOMAXPROCS and GOMEMLIMIT should reflect the container/cgroup the
	// process actually runs in, not the host's full resources — matters
	// on the same class of machines martos targets at the edge (a
	// Raspberry Pi-class Linux gateway running the host build alongside
	// other workloads), not just in a datacenter container.
	undo, err := maxprocs.Set()
	defer undo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "martosctl: automaxprocs: %v\n", err)
	}
	if _, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithProvider(memlimit.ApplyFallback(memlimit.FromCgroup, memlimit.FromSystem)),
	); err != nil {
		fmt.Fprintf(os.Stderr, "martosctl: automemlimit: %v\n", err)
	}

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
