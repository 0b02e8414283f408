package tcp

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"dominicbreuker/securesock/pkg/config"
	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/semaphore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListener_InvalidAddr(t *testing.T) {
	t.Parallel()

	_, err := NewListener("invalid:abc", nil, nil, log.NewLogger(false))
	assert.Error(t, err)
}

func TestNewListener_InjectedListenFunc(t *testing.T) {
	t.Parallel()

	called := false
	deps := &config.Dependencies{
		TCPListener: func(network string, laddr *net.TCPAddr) (net.Listener, error) {
			called = true
			return net.ListenTCP(network, laddr)
		},
	}

	l, err := NewListener("127.0.0.1:0", nil, deps, nil)
	require.NoError(t, err)
	defer l.Close()
	assert.True(t, called)
}

func TestListener_ServeAndCancel(t *testing.T) {
	t.Parallel()

	l, err := NewListener("127.0.0.1:0", nil, nil, log.NewLogger(false))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.Serve(ctx, func(conn net.Conn) {
			conn.Write([]byte("hi\n"))
		})
	}()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "hi\n", line)
	conn.Close()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestListener_TooManyClients(t *testing.T) {
	t.Parallel()

	l, err := NewListener("127.0.0.1:0", semaphore.New(1), nil, log.NewLogger(false))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	go l.Serve(ctx, func(conn net.Conn) {
		started <- struct{}{}
		<-release
	})

	first, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer first.Close()
	<-started

	second, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer second.Close()

	line, err := bufio.NewReader(second).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, TooManyClientsMsg, line)

	close(release)
}
