// Package config loads a node's on-disk configuration: which executor
// mode to run, which timer index to claim, and the sync parameters
// (spec.md §3's Sync Config). Grounded on the ambient config-file
// pattern the pack's TOML-based tools use, decoded with
// github.com/BurntSushi/toml rather than hand-rolled flag parsing.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/martos-project/martos/syncalgo"
)

// ExecutorMode selects which of the two Component C/D executors a node
// runs. Exactly one is active per node (spec.md §4.A: mips64 never runs
// preemptive; every other target may run either).
type ExecutorMode string

const (
	ExecutorCooperative ExecutorMode = "cooperative"
	ExecutorPreemptive  ExecutorMode = "preemptive"
)

// Node is the full on-disk node configuration.
type Node struct {
	NodeID       uint32        `toml:"node_id"`
	TimerIndex   int           `toml:"timer_index"`
	Executor     ExecutorMode  `toml:"executor"`
	TimeSliceMS  int           `toml:"time_slice_ms"`
	AdminAddr    string        `toml:"admin_addr"`
	BroadcastAddr string       `toml:"broadcast_addr"`
	ListenAddr   string        `toml:"listen_addr"`
	Sync         SyncSection   `toml:"sync"`
}

// SyncSection mirrors syncalgo.Config field for field, with TOML tags;
// kept distinct from syncalgo.Config itself so the wire/file format is
// insulated from internal field renames.
type SyncSection struct {
	IntervalMS          uint32  `toml:"interval_ms"`
	MaxCorrectionThresholdUS int64   `toml:"max_correction_threshold_us"`
	AccelerationFactor  float64 `toml:"acceleration_factor"`
	DecelerationFactor  float64 `toml:"deceleration_factor"`
	MaxPeers            int     `toml:"max_peers"`
	AdaptiveFrequency   bool    `toml:"adaptive_frequency"`
}

// Default returns a Node configuration matching the reference design's
// SyncConfig::default(), with a single cooperative executor on timer 0.
func Default() Node {
	return Node{
		NodeID:        0,
		TimerIndex:    0,
		Executor:      ExecutorCooperative,
		TimeSliceMS:   1000,
		AdminAddr:     "127.0.0.1:9090",
		BroadcastAddr: "255.255.255.255:7777",
		ListenAddr:    ":7777",
		Sync: SyncSection{
			IntervalMS:               1000,
			MaxCorrectionThresholdUS: 1000,
			AccelerationFactor:       0.1,
			DecelerationFactor:       0.05,
			MaxPeers:                 10,
			AdaptiveFrequency:        true,
		},
	}
}

// Load decodes a Node configuration from the TOML file at path.
func Load(path string) (Node, error) {
	n := Default()
	if _, err := toml.DecodeFile(path, &n); err != nil {
		return Node{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return n, nil
}

// SyncConfig converts the file's Sync section into a syncalgo.Config,
// filling in NodeID from the top-level node_id field.
func (n Node) SyncConfig() syncalgo.Config {
	return syncalgo.Config{
		NodeID:                   n.NodeID,
		SyncIntervalMS:           n.Sync.IntervalMS,
		MaxCorrectionThresholdUS: n.Sync.MaxCorrectionThresholdUS,
		AccelerationFactor:       n.Sync.AccelerationFactor,
		DecelerationFactor:       n.Sync.DecelerationFactor,
		MaxPeers:                 n.Sync.MaxPeers,
		AdaptiveFrequency:        n.Sync.AdaptiveFrequency,
	}
}

// TimeSlice returns the configured preemptive time slice as a Duration.
func (n Node) TimeSlice() time.Duration {
	if n.TimeSliceMS <= 0 {
		return 0
	}
	return time.Duration(n.TimeSliceMS) * time.Millisecond
}
