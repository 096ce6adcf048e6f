// Package syncmgr implements the Time-Sync Manager (spec.md §4.G): the
// component that owns a node's clock offset, dispatches inbound
// syncproto messages into the syncalgo consensus engine, and drives the
// periodic outbound request cadence.
package syncmgr

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/martos-project/martos/metrics"
	"github.com/martos-project/martos/syncalgo"
	"github.com/martos-project/martos/syncproto"
)

// ErrNetworkError mirrors the reference design's NetworkError variant:
// a Transport send/receive failed.
var ErrNetworkError = errors.New("syncmgr: network error")

// Transport is the abstraction over "however messages actually move
// between nodes" — an in-process channel fabric for simulation/tests
// (transport/mem) or a UDP broadcast socket for real deployments
// (transport/udpbroadcast).
type Transport interface {
	// Send transmits a single encoded frame. There is no per-peer target:
	// both shipped transports broadcast it to every other node.
	Send(ctx context.Context, frame []byte) error
	// Recv returns all frames received since the last call, without
	// blocking. An empty, nil-error result means nothing is pending.
	Recv(ctx context.Context) ([][]byte, error)
}

// Config mirrors spec.md §3's Sync Config (NodeID through AdaptiveFrequency),
// reused directly as syncalgo.Config since the two share every field.
type Config = syncalgo.Config

// DefaultConfig mirrors the reference design's defaults.
func DefaultConfig() Config { return syncalgo.DefaultConfig() }

// Manager is the main synchronization controller (spec.md §4.G). It
// owns atomic cross-goroutine state (enabled flag, clock offset, last
// send timestamp, outbound sequence counter) plus a syncalgo.Algorithm
// that is only ever touched from ProcessCycle's single goroutine.
type Manager struct {
	config    Config
	sessionID uuid.UUID
	transport Transport
	log       *zap.Logger

	enabled      atomic.Bool
	offsetUS     atomic.Int64
	lastSendUS   atomic.Int64
	sequence     atomic.Uint32

	algo *syncalgo.Algorithm
}

// New constructs a Manager bound to transport, using cfg and logging
// through log (a no-op logger is used if log is nil).
func New(cfg Config, transport Transport, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		config:    cfg,
		sessionID: uuid.New(),
		transport: transport,
		log:       log.Named("martos.syncmgr").With(zap.Uint32("node_id", cfg.NodeID)),
		algo:      syncalgo.New(cfg),
	}
}

// SessionID identifies this Manager instance. A fresh ID is generated by
// every New call, so each run of the process gets a different one.
func (m *Manager) SessionID() uuid.UUID { return m.sessionID }

// Enable turns on synchronization (spec.md §4.G: enable_sync).
func (m *Manager) Enable() { m.enabled.Store(true) }

// Disable turns off synchronization (spec.md §4.G: disable_sync).
func (m *Manager) Disable() { m.enabled.Store(false) }

// Enabled reports whether synchronization is currently active.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// CorrectedTime applies the accumulated clock offset to localTimeUS.
func (m *Manager) CorrectedTime(localTimeUS int64) int64 {
	return localTimeUS + m.offsetUS.Load()
}

// OffsetUS returns the current accumulated correction, in microseconds.
func (m *Manager) OffsetUS() int64 { return m.offsetUS.Load() }

// Algorithm exposes the underlying consensus engine for stats/peer
// introspection (used by the admin and metrics packages).
func (m *Manager) Algorithm() *syncalgo.Algorithm { return m.algo }

// ProcessCycle implements spec.md §4.G steps 1–3: drain every inbound
// frame, decode and dispatch it by Kind, then — if the sync interval has
// elapsed — broadcast a fresh Request carrying an incrementing sequence
// number. nowUS is the node's uncorrected local clock, in microseconds.
func (m *Manager) ProcessCycle(ctx context.Context, nowUS int64) error {
	if !m.Enabled() {
		return nil
	}

	frames, err := m.transport.Recv(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}

	for _, frame := range frames {
		var msg syncproto.Message
		if err := msg.UnmarshalBinary(frame); err != nil {
			metrics.Sync.ParseErrorsTotal.Inc()
			m.log.Warn("dropping malformed sync frame", zap.Error(err))
			continue
		}
		if msg.Source == m.config.NodeID {
			continue // ignore our own broadcasts
		}
		m.dispatch(msg, nowUS)
	}

	intervalUS := int64(m.config.SyncIntervalMS) * 1000
	if intervalUS <= 0 {
		return nil
	}
	if nowUS-m.lastSendUS.Load() < intervalUS {
		return nil
	}

	if err := m.sendRequest(ctx, nowUS); err != nil {
		return err
	}
	m.lastSendUS.Store(nowUS)
	return nil
}

func (m *Manager) dispatch(msg syncproto.Message, nowUS int64) {
	switch msg.Kind {
	case syncproto.KindRequest:
		m.respondTo(msg, nowUS)
	case syncproto.KindResponse, syncproto.KindBroadcast:
		m.applyCorrection(msg, nowUS)
	}
}

func (m *Manager) applyCorrection(msg syncproto.Message, nowUS int64) {
	correction, err := m.algo.ProcessSyncMessage(msg.Source, int64(msg.TimestampUS), m.CorrectedTime(nowUS))
	if err != nil {
		m.log.Warn("sync algorithm rejected message", zap.Error(err), zap.Uint32("peer", msg.Source))
		return
	}

	// Re-bound at the manager layer too: the algorithm already clamps,
	// but the manager never trusts a single layer of bounds checking
	// with a value that feeds directly into the reported clock.
	max := m.config.MaxCorrectionThresholdUS
	if correction > max {
		correction = max
	} else if correction < -max {
		correction = -max
	}

	m.offsetUS.Add(correction)
}

func (m *Manager) respondTo(msg syncproto.Message, nowUS int64) {
	resp := syncproto.Message{
		Kind:        syncproto.KindResponse,
		Source:      m.config.NodeID,
		Target:      msg.Source,
		TimestampUS: uint64(m.CorrectedTime(nowUS)),
		Sequence:    m.sequence.Add(1),
	}
	m.send(resp)
}

func (m *Manager) sendRequest(ctx context.Context, nowUS int64) error {
	req := syncproto.Message{
		Kind:        syncproto.KindRequest,
		Source:      m.config.NodeID,
		Target:      0,
		TimestampUS: uint64(m.CorrectedTime(nowUS)),
		Sequence:    m.sequence.Add(1),
	}
	return m.send(req)
}

func (m *Manager) send(msg syncproto.Message) error {
	frame, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	if err := m.transport.Send(context.Background(), frame); err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	return nil
}

// Run drives ProcessCycle on a ticker until ctx is cancelled, using now
// to read the node's uncorrected local clock in microseconds.
func (m *Manager) Run(ctx context.Context, now func() time.Duration) error {
	interval := time.Duration(m.config.SyncIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.ProcessCycle(ctx, now().Microseconds()); err != nil {
				m.log.Error("sync cycle failed", zap.Error(err))
			}
		}
	}
}
