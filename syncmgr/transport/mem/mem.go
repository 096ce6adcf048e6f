// Package mem implements an in-process syncmgr.Transport backed by Go
// channels, standing in for the reference design's mock ESP-NOW layer
// (original_source's esp_now_protocol.rs test-build stubs): a way to run
// a multi-node cluster inside one process for simulation and tests.
package mem

import (
	"context"
	"sync"
)

// Bus is a shared broadcast medium that every Node reads from and
// writes to, modeling a single ESP-NOW radio channel shared by every
// node in the simulated cluster.
type Bus struct {
	mu    sync.Mutex
	nodes []*Node
}

// NewBus constructs an empty bus.
func NewBus() *Bus { return &Bus{} }

// NewNode attaches a new Node to the bus and returns it. inbox is sized
// generously since frames accumulate between ProcessCycle calls.
func (b *Bus) NewNode() *Node {
	n := &Node{bus: b, inbox: make(chan []byte, 256)}
	b.mu.Lock()
	b.nodes = append(b.nodes, n)
	b.mu.Unlock()
	return n
}

// Node is a single endpoint on a Bus; it implements syncmgr.Transport.
type Node struct {
	bus   *Bus
	inbox chan []byte
}

// Send broadcasts frame to every other node on the bus.
func (n *Node) Send(ctx context.Context, frame []byte) error {
	cp := append([]byte(nil), frame...)

	n.bus.mu.Lock()
	peers := make([]*Node, len(n.bus.nodes))
	copy(peers, n.bus.nodes)
	n.bus.mu.Unlock()

	for _, peer := range peers {
		if peer == n {
			continue
		}
		select {
		case peer.inbox <- cp:
		default:
			// Peer's inbox is saturated; drop rather than block the sender,
			// matching a best-effort broadcast medium.
		}
	}
	return nil
}

// Recv drains every frame queued for this node since the last call.
func (n *Node) Recv(ctx context.Context) ([][]byte, error) {
	var out [][]byte
	for {
		select {
		case frame := <-n.inbox:
			out = append(out, frame)
		default:
			return out, nil
		}
	}
}
