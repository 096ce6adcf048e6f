package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped via -ldflags "-X main.version=..." at release build
// time; left at "dev" for local builds.
var version = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the martosctl version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("martosctl " + version)
			return nil
		},
	}
}
