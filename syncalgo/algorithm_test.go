package syncalgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		NodeID:                   1,
		SyncIntervalMS:           1000,
		MaxCorrectionThresholdUS: 1000,
		AccelerationFactor:       0.1,
		DecelerationFactor:       0.05,
		MaxPeers:                 10,
		AdaptiveFrequency:        true,
	}
}

// TestProcessSyncMessageCreatesPeer checks that the first observation of
// an unknown peer inserts it into the table and records its time
// difference (remote minus local timestamp).
func TestProcessSyncMessageCreatesPeer(t *testing.T) {
	a := New(testConfig())
	_, err := a.ProcessSyncMessage(42, 100_000, 90_000)
	require.NoError(t, err)
	assert.Equal(t, 1, a.PeerCount())

	p, err := a.Peer(42)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), p.TimeDiffUS)
}

// TestCorrectionIsBounded covers spec.md §8: correction never exceeds
// MaxCorrectionThresholdUS in magnitude, even facing an enormous diff.
func TestCorrectionIsBounded(t *testing.T) {
	a := New(testConfig())
	correction, err := a.ProcessSyncMessage(1, 10_000_000, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, absI64(correction), a.config.MaxCorrectionThresholdUS)
}

// TestWeightedAverageFavorsHigherQualityPeer covers spec.md §8: a peer
// with a higher quality score contributes more to the weighted average
// than a low-quality peer reporting a wildly different diff.
func TestWeightedAverageFavorsHigherQualityPeer(t *testing.T) {
	a := New(testConfig())
	a.AddPeer(Peer{NodeID: 1, TimeDiffUS: 100, QualityScore: 1.0})
	a.AddPeer(Peer{NodeID: 2, TimeDiffUS: 100_000, QualityScore: 0.01})

	avg := a.weightedAverageDiff()
	// Dominated by peer 1's diff since its quality weight dwarfs peer 2's.
	assert.Less(t, absI64(avg-100), absI64(avg-100_000))
}

func TestHistoryBoundedAt100(t *testing.T) {
	a := New(testConfig())
	for i := 0; i < 250; i++ {
		_, err := a.ProcessSyncMessage(1, int64(i*1000), 0)
		require.NoError(t, err)
	}
	hist := a.History()
	assert.Len(t, hist, maxHistory)
	// Oldest retained entry should correspond to iteration 150 (0-indexed),
	// since only the most recent 100 are kept.
	assert.Equal(t, int64(150*1000), hist[0].TimeDiffUS)
	assert.Equal(t, int64(249*1000), hist[len(hist)-1].TimeDiffUS)
}

func TestIsConvergedWithinThreshold(t *testing.T) {
	a := New(testConfig())
	assert.True(t, a.IsConverged(), "zero cumulative correction must be converged")

	_, err := a.ProcessSyncMessage(1, 10_000_000, 0)
	require.NoError(t, err)
	assert.False(t, a.IsConverged())
}

func TestQualityScoreClampedToUnitInterval(t *testing.T) {
	a := New(testConfig())
	a.AddPeer(Peer{NodeID: 1, QualityScore: 1.0})
	for i := 0; i < 50; i++ {
		_, err := a.ProcessSyncMessage(1, 1, 0)
		require.NoError(t, err)
	}
	p, err := a.Peer(1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.QualityScore, 0.0)
	assert.LessOrEqual(t, p.QualityScore, 1.0)
}

func TestAddPeerRespectsMaxPeers(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPeers = 2
	a := New(cfg)
	a.AddPeer(Peer{NodeID: 1})
	a.AddPeer(Peer{NodeID: 2})
	a.AddPeer(Peer{NodeID: 3})
	assert.Equal(t, 2, a.PeerCount())
}

// TestProcessSyncMessageRespectsMaxPeers covers spec.md §3/§8: inbound
// sync traffic (the primary peer-discovery path per spec.md §4.G) must
// not grow the peer table past MaxPeers, same as the explicit AddPeer
// path above.
func TestProcessSyncMessageRespectsMaxPeers(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPeers = 2
	a := New(cfg)

	_, err := a.ProcessSyncMessage(1, 100_000, 90_000)
	require.NoError(t, err)
	_, err = a.ProcessSyncMessage(2, 100_000, 90_000)
	require.NoError(t, err)
	assert.Equal(t, 2, a.PeerCount())

	_, err = a.ProcessSyncMessage(3, 100_000, 90_000)
	assert.ErrorIs(t, err, ErrPeerNotFound)
	assert.Equal(t, 2, a.PeerCount())

	// A repeat observation of an already-known peer is never rejected by
	// the cap, only genuinely new peers are.
	_, err = a.ProcessSyncMessage(1, 101_000, 91_000)
	assert.NoError(t, err)
	assert.Equal(t, 2, a.PeerCount())
}

func TestRemovePeer(t *testing.T) {
	a := New(testConfig())
	a.AddPeer(Peer{NodeID: 1})
	a.RemovePeer(1)
	assert.Equal(t, 0, a.PeerCount())
	_, err := a.Peer(1)
	assert.ErrorIs(t, err, ErrPeerNotFound)
}

func TestStatsReflectsPeerTable(t *testing.T) {
	a := New(testConfig())
	a.AddPeer(Peer{NodeID: 1, TimeDiffUS: 100})
	a.AddPeer(Peer{NodeID: 2, TimeDiffUS: 300})

	s := a.Stats()
	assert.Equal(t, 2, s.PeerCount)
	assert.Equal(t, int64(100), s.MinTimeDiffUS)
	assert.Equal(t, int64(300), s.MaxTimeDiffUS)
	assert.Equal(t, 200.0, s.MeanTimeDiffUS)
}

func TestResetRestoresQualityAndHistory(t *testing.T) {
	a := New(testConfig())
	_, err := a.ProcessSyncMessage(1, 10_000_000, 0)
	require.NoError(t, err)
	a.Reset()

	assert.Equal(t, int64(0), a.CumulativeCorrection())
	assert.Empty(t, a.History())
	p, err := a.Peer(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.QualityScore)
}
