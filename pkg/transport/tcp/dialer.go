// Package tcp provides the raw TCP transport: a non-blocking socket over an
// accepted connection's descriptor, a connection-limited listener and a
// dialer for the client side.
package tcp

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Dialer connects to a securesock server.
type Dialer struct {
	addr    string
	timeout time.Duration
}

// NewDialer creates a dialer for addr. A zero timeout means no limit.
func NewDialer(addr string, timeout time.Duration) (*Dialer, error) {
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %s", addr, err)
	}

	return &Dialer{addr: addr, timeout: timeout}, nil
}

// Dial establishes a TCP connection with keep-alive enabled.
func (d *Dialer) Dial(ctx context.Context) (net.Conn, error) {
	nd := net.Dialer{Timeout: d.timeout, KeepAlive: 30 * time.Second}
	conn, err := nd.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return nil, fmt.Errorf("DialContext(tcp, %s): %s", d.addr, err)
	}

	return conn, nil
}
