package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.toml")
	contents := `
node_id = 7
executor = "preemptive"
time_slice_ms = 500

[sync]
interval_ms = 2000
max_peers = 3
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	n, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(7), n.NodeID)
	assert.Equal(t, ExecutorPreemptive, n.Executor)
	assert.Equal(t, 500, n.TimeSliceMS)
	assert.Equal(t, uint32(2000), n.Sync.IntervalMS)
	assert.Equal(t, 3, n.Sync.MaxPeers)
	// Fields absent from the file retain Default()'s values.
	assert.Equal(t, int64(1000), n.Sync.MaxCorrectionThresholdUS)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSyncConfigCarriesNodeID(t *testing.T) {
	n := Default()
	n.NodeID = 42
	cfg := n.SyncConfig()
	assert.Equal(t, uint32(42), cfg.NodeID)
	assert.Equal(t, n.Sync.MaxPeers, cfg.MaxPeers)
}
