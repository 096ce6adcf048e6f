package main

import (
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "martosctl",
		Short: "Run and inspect a martos RTOS node",
		Long: `martosctl is the host-side control surface for a martos node: it loads a
node's TOML configuration, brings up the dual-mode task executor and the
Local-Voting-Protocol time-sync manager, and serves a local admin/metrics
HTTP endpoint for introspection.

Use 'martosctl run' to run a single node against real UDP broadcast
peers, or 'martosctl simulate' to run a small in-process cluster over
an in-memory transport, useful for exercising the sync algorithm without
any network setup.`,
	}

	root.AddCommand(runCmd())
	root.AddCommand(simulateCmd())
	root.AddCommand(versionCmd())
	return root
}
