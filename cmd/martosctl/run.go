package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	martos "github.com/martos-project/martos"
	"github.com/martos-project/martos/config"
	"github.com/martos-project/martos/executor/cooperative"
	"github.com/martos-project/martos/port"
)

// heapSize is the sim port's bump-allocator size. Hardware ports size
// their heap from the linker script instead; this only applies to the
// default, non-build-tagged sim port used for host runs.
const heapSize = 1 << 20 // 1 MiB

func runCmd() *cobra.Command {
	var configPath string
	var debug bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single martos node",
		Long: `Run loads the node configuration, brings up the selected executor
(cooperative or preemptive) and the Local-Voting-Protocol sync manager
against a real UDP broadcast transport, and serves the admin/metrics
endpoint until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to node TOML config (defaults built in if empty)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable verbose development logging")
	return cmd
}

func runNode(configPath string, debug bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("martosctl run: %w", err)
		}
		cfg = loaded
	}

	log, err := martos.NewLogger(debug)
	if err != nil {
		return fmt.Errorf("martosctl run: logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	p := port.NewSim(heapSize)
	rt, err := martos.New(cfg, p, log)
	if err != nil {
		return fmt.Errorf("martosctl run: %w", err)
	}
	defer rt.Close() //nolint:errcheck

	stats := p.Allocator().Stats()
	log.Sugar().Infof("heap: %s used of %s", humanize.IBytes(uint64(stats.Used)), humanize.IBytes(uint64(stats.Capacity)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if rt.Cooperative != nil {
		rt.Cooperative.AddTask(&cooperative.FuncTask{
			LoopFn: func() error {
				time.Sleep(time.Millisecond)
				return nil
			},
		})
		go rt.Cooperative.Start(ctx)
	}

	server := &http.Server{Addr: cfg.AdminAddr, Handler: rt.Admin}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Errorf("admin server: %v", err)
		}
	}()
	defer server.Close() //nolint:errcheck

	log.Sugar().Infof("martos node %s listening admin=%s sync=%s", rt.ID, cfg.AdminAddr, cfg.ListenAddr)
	return rt.Run(ctx)
}
