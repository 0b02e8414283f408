// Package gencert implements the gencert command, which creates a small
// certificate authority with server and client certificates for trying
// out TLS.
package gencert

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"dominicbreuker/securesock/pkg/crypto"
	"dominicbreuker/securesock/pkg/log"

	"github.com/urfave/cli/v3"
)

const (
	dirFlag    = "dir"
	hostFlag   = "host"
	clientFlag = "client"
	revokeFlag = "revoke"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "gencert",
		Usage: "Generate a CA, a server certificate and client certificates",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := options{
				dir:     cmd.String(dirFlag),
				hosts:   cmd.StringSlice(hostFlag),
				clients: cmd.StringSlice(clientFlag),
				revoke:  cmd.StringSlice(revokeFlag),
			}
			return generate(opts, log.NewLogger(false))
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  dirFlag,
				Usage: "Output directory",
				Value: ".",
			},
			&cli.StringSliceFlag{
				Name:  hostFlag,
				Usage: "Server host names or addresses",
				Value: []string{"localhost", "127.0.0.1"},
			},
			&cli.StringSliceFlag{
				Name:  clientFlag,
				Usage: "Issue a client certificate with this common name",
			},
			&cli.StringSliceFlag{
				Name:  revokeFlag,
				Usage: "Client common names to put on the revocation list",
			},
		},
	}
}

type options struct {
	dir     string
	hosts   []string
	clients []string
	revoke  []string
}

// Files written to the output directory.
const (
	RootCertFile = "root.crt"
	RootKeyFile  = "root.key"
	CRLFile      = "root.crl"
	CertFile     = "server.crt"
	KeyFile      = "server.key"
)

type pemFile struct {
	name    string
	data    []byte
	private bool
}

func generate(opts options, logger *log.Logger) error {
	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %s", opts.dir, err)
	}

	ca, err := crypto.NewAuthority("")
	if err != nil {
		return err
	}
	caKey, err := ca.KeyPEM()
	if err != nil {
		return err
	}
	files := []pemFile{
		{RootCertFile, ca.CertPEM, false},
		{RootKeyFile, caKey, true},
	}

	cn := "localhost"
	if len(opts.hosts) > 0 {
		cn = opts.hosts[0]
	}
	srv, err := ca.Issue(crypto.IssueOptions{CommonName: cn, Hosts: opts.hosts})
	if err != nil {
		return err
	}
	files = append(files, pemFile{CertFile, srv.CertPEM, false}, pemFile{KeyFile, srv.KeyPEM, true})

	serials := map[string]*big.Int{}
	for _, name := range opts.clients {
		c, err := ca.Issue(crypto.IssueOptions{CommonName: name, Client: true})
		if err != nil {
			return err
		}
		serials[name] = c.Cert.SerialNumber
		files = append(files, pemFile{name + ".crt", c.CertPEM, false}, pemFile{name + ".key", c.KeyPEM, true})
	}

	var revoked []*big.Int
	for _, name := range opts.revoke {
		s, ok := serials[name]
		if !ok {
			return fmt.Errorf("cannot revoke %q: no client certificate issued for it", name)
		}
		revoked = append(revoked, s)
	}
	crl, err := ca.RevocationList(revoked...)
	if err != nil {
		return err
	}
	files = append(files, pemFile{CRLFile, crl, false})

	for _, f := range files {
		path := filepath.Join(opts.dir, f.name)
		if err := crypto.WriteFile(path, f.data, f.private); err != nil {
			return err
		}
		logger.InfoMsg("Wrote %s", path)
	}

	return nil
}
