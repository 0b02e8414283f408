//go:build !windows

package serve

import (
	"bytes"
	"context"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dominicbreuker/securesock/pkg/config"
	"dominicbreuker/securesock/pkg/crypto"
	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/waitset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "serve", cmd.Name)
	assert.NotEmpty(t, cmd.Flags)
	assert.NotNil(t, cmd.Action)
}

func TestSupervisor(t *testing.T) {
	sup, err := supervisor(config.SupervisorNone)
	require.NoError(t, err)
	assert.Nil(t, sup)

	t.Setenv(waitset.SupervisorFdEnv, "")
	_, err = supervisor(config.SupervisorPipe)
	assert.Error(t, err)
}

func testConfig(t *testing.T, out io.Writer) (*config.Shared, <-chan net.Addr) {
	t.Helper()

	addrs := make(chan net.Addr, 1)
	cfg := &config.Shared{
		Host:   "127.0.0.1",
		Logger: log.NewLoggerTo(out, true),
		Deps: &config.Dependencies{
			TCPListener: func(network string, _ *net.TCPAddr) (net.Listener, error) {
				l, err := net.Listen(network, "127.0.0.1:0")
				if err == nil {
					addrs <- l.Addr()
				}
				return l, err
			},
			Exit: func(code int) { t.Errorf("unexpected exit(%d)", code) },
		},
	}
	cfg.ApplyDefaults()
	return cfg, addrs
}

func TestApp_RunEcho(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	cfg, addrs := testConfig(t, &logs)

	a, err := build(cfg)
	require.NoError(t, err)
	assert.Nil(t, a.lifecycle.Provider())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()

	var addr net.Addr
	select {
	case addr = <-addrs:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start listening")
	}

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestApp_ReloadPlaintext(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	cfg, _ := testConfig(t, &logs)

	a, err := build(cfg)
	require.NoError(t, err)

	a.reload()
	assert.Contains(t, logs.String(), "SSL is disabled, nothing to reload")
	assert.NotContains(t, logs.String(), "SSL configuration reloaded")
}

func TestApp_ReloadSSL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ca, err := crypto.NewAuthority("test CA")
	require.NoError(t, err)
	cert, err := ca.Issue(crypto.IssueOptions{CommonName: "localhost", Hosts: []string{"127.0.0.1"}})
	require.NoError(t, err)

	var logs bytes.Buffer
	cfg, _ := testConfig(t, &logs)
	cfg.SSL = true
	cfg.TLS.CertFile = filepath.Join(dir, "server.crt")
	cfg.TLS.KeyFile = filepath.Join(dir, "server.key")
	cfg.ApplyDefaults()
	require.NoError(t, crypto.WriteFile(cfg.TLS.CertFile, cert.CertPEM, false))
	require.NoError(t, crypto.WriteFile(cfg.TLS.KeyFile, cert.KeyPEM, true))

	a, err := build(cfg)
	require.NoError(t, err)
	require.NoError(t, a.lifecycle.Initialize(true))

	a.reload()
	assert.Equal(t, 1, strings.Count(logs.String(), "SSL configuration reloaded"))
	assert.Contains(t, logs.String(), "Received SIGHUP, reloading SSL configuration")
}

func TestBuild_SSLProvider(t *testing.T) {
	t.Parallel()

	cfg, _ := testConfig(t, io.Discard)
	cfg.SSL = true
	cfg.ApplyDefaults()

	a, err := build(cfg)
	require.NoError(t, err)
	assert.NotNil(t, a.lifecycle.Provider())
}
