// Package connect implements the connect command: a client that attaches
// its standard streams to a securesock server.
package connect

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"dominicbreuker/securesock/cmd/shared"
	"dominicbreuker/securesock/pkg/keyfile"
	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/pipeio"
	"dominicbreuker/securesock/pkg/transport/tcp"

	"github.com/urfave/cli/v3"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "connect",
		Usage:       "Connect to a server and attach stdin and stdout",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := getOptions(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			shared.SetupSignalHandling(cancel, nil, nil)

			return run(ctx, opts, pipeio.NewStdio(), log.NewLogger(cmd.Bool(shared.VerboseFlag)))
		},
		Flags: getFlags(),
	}
}

type options struct {
	addr       string
	timeout    time.Duration
	ssl        bool
	insecure   bool
	serverName string
	certFile   string
	keyFile    string
	caFile     string
}

func getOptions(cmd *cli.Command) (*options, error) {
	if cmd.Args().Len() != 1 {
		return nil, fmt.Errorf("must specify exactly one transport, got %d arguments", cmd.Args().Len())
	}

	host, port, err := shared.ParseTransport(cmd.Args().First())
	if err != nil {
		return nil, err
	}

	opts := &options{
		addr:       net.JoinHostPort(host, fmt.Sprint(port)),
		timeout:    time.Duration(cmd.Int(shared.TimeoutFlag)) * time.Millisecond,
		ssl:        cmd.Bool(shared.SSLFlag),
		insecure:   cmd.Bool(shared.InsecureFlag),
		serverName: cmd.String(shared.ServerNameFlag),
		certFile:   cmd.String(shared.CertFlag),
		keyFile:    cmd.String(shared.KeyFlag),
		caFile:     cmd.String(shared.CAFlag),
	}
	if opts.serverName == "" {
		opts.serverName = host
	}

	if !opts.ssl && (opts.certFile != "" || opts.keyFile != "" || opts.caFile != "" || opts.insecure) {
		return nil, fmt.Errorf("You must use '--ssl' to use TLS settings")
	}
	if (opts.certFile == "") != (opts.keyFile == "") {
		return nil, fmt.Errorf("'--cert' and '--key' must be used together")
	}

	return opts, nil
}

func run(ctx context.Context, opts *options, stdio io.ReadWriteCloser, logger *log.Logger) error {
	d, err := tcp.NewDialer(opts.addr, opts.timeout)
	if err != nil {
		return err
	}

	conn, err := d.Dial(ctx)
	if err != nil {
		return err
	}

	if opts.ssl {
		conn, err = upgrade(ctx, conn, opts, logger)
		if err != nil {
			return err
		}
	}

	logger.InfoMsg("Connected to %s", conn.RemoteAddr())
	defer logger.InfoMsg("Connection to %s closed", conn.RemoteAddr())

	pipeio.Pipe(ctx, stdio, conn, func(err error) {
		logger.VerboseMsg("Pipe(stdio, conn): %s", err)
	})

	return nil
}

func upgrade(ctx context.Context, conn net.Conn, opts *options, logger *log.Logger) (net.Conn, error) {
	cfg, err := clientTLS(opts, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	tc := tls.Client(conn, cfg)

	hctx := ctx
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	if err := tc.HandshakeContext(hctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	st := tc.ConnectionState()
	logger.VerboseMsg("SSL connection (protocol: %s, cipher: %s)", tls.VersionName(st.Version), tls.CipherSuiteName(st.CipherSuite))
	return tc, nil
}

func clientTLS(opts *options, logger *log.Logger) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         opts.serverName,
		InsecureSkipVerify: opts.insecure,
	}

	if opts.caFile != "" {
		data, err := os.ReadFile(opts.caFile)
		if err != nil {
			return nil, fmt.Errorf("could not read root certificate file %q: %w", opts.caFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(data) {
			return nil, fmt.Errorf("no certificates found in root certificate file %q", opts.caFile)
		}
		cfg.RootCAs = pool
	}

	if opts.certFile != "" {
		guard := keyfile.NewGuard(logger, nil, 0)
		if err := guard.Validate(opts.keyFile); err != nil {
			return nil, err
		}

		cert, err := tls.LoadX509KeyPair(opts.certFile, opts.keyFile)
		if err != nil {
			return nil, fmt.Errorf("could not load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetConnectFlags()...)

	return flags
}
