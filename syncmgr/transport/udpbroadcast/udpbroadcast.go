// Package udpbroadcast implements a syncmgr.Transport over a UDP
// broadcast socket, the real-network analogue of the reference design's
// ESP-NOW broadcast channel (original_source's esp_now_protocol.rs
// broadcast_time/BROADCAST_ADDRESS) for nodes that share an IPv4
// broadcast domain instead of an 802.11 radio.
package udpbroadcast

import (
	"context"
	"fmt"
	"net"
	"time"
)

// maxFrame bounds a single read, generous for the 23-byte header plus
// up to a 64KiB payload that syncproto permits.
const maxFrame = 65536 + 23

// Transport sends and receives syncproto frames over a UDP broadcast
// address. It is safe for concurrent Send/Recv calls from the single
// goroutine that syncmgr.Manager.Run expects to own it, but readers
// should not share a Transport across Managers.
type Transport struct {
	conn      *net.UDPConn
	broadcast *net.UDPAddr
}

// Dial opens a UDP socket bound to listenAddr (e.g. ":7777") and
// configures broadcastAddr (e.g. "255.255.255.255:7777") as the Send
// destination.
func Dial(listenAddr, broadcastAddr string) (*Transport, error) {
	laddr, err := net.ResolveUDPAddr("udp4", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("udpbroadcast: resolve listen address: %w", err)
	}
	baddr, err := net.ResolveUDPAddr("udp4", broadcastAddr)
	if err != nil {
		return nil, fmt.Errorf("udpbroadcast: resolve broadcast address: %w", err)
	}
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, fmt.Errorf("udpbroadcast: listen: %w", err)
	}
	return &Transport{conn: conn, broadcast: baddr}, nil
}

// Close releases the underlying socket.
func (t *Transport) Close() error { return t.conn.Close() }

// Send broadcasts frame to the configured broadcast address.
func (t *Transport) Send(ctx context.Context, frame []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	}
	_, err := t.conn.WriteToUDP(frame, t.broadcast)
	if err != nil {
		return fmt.Errorf("udpbroadcast: write: %w", err)
	}
	return nil
}

// Recv drains every datagram currently queued on the socket, returning
// within about a millisecond once none remain (a read deadline that has
// already passed would fail every read, queued data included).
func (t *Transport) Recv(ctx context.Context) ([][]byte, error) {
	var out [][]byte
	buf := make([]byte, maxFrame)

	if err := t.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return nil, fmt.Errorf("udpbroadcast: set deadline: %w", err)
	}

	for {
		n, _, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return out, nil
			}
			return out, fmt.Errorf("udpbroadcast: read: %w", err)
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		out = append(out, frame)
	}
}
