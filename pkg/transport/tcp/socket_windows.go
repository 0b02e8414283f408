//go:build windows
// +build windows

package tcp

import (
	"errors"
	"net"
)

var errUnsupported = errors.New("raw socket I/O is not supported on windows")

// Socket is unavailable on Windows.
type Socket struct{}

// NewSocket always fails on Windows.
func NewSocket(conn net.Conn) (*Socket, error) { return nil, errUnsupported }

func (s *Socket) Read(p []byte) (int, error)  { return 0, errUnsupported }
func (s *Socket) Write(p []byte) (int, error) { return 0, errUnsupported }
func (s *Socket) Close() error                { return nil }
func (s *Socket) Fd() int                     { return -1 }
func (s *Socket) RemoteAddr() net.Addr        { return nil }
