// Package ssl is the crypto/tls based secure transport provider.
//
// Init builds a server tls.Config from the TLS settings and publishes it
// atomically, so a failed reload leaves the previous configuration in
// place and sessions opened earlier keep the config they started with.
// Sessions run on non-blocking sockets; see sockIO for how crypto/tls is
// kept usable across would-block conditions.
package ssl

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"dominicbreuker/securesock/pkg/config"
	"dominicbreuker/securesock/pkg/keyfile"
	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/transport"
)

var errNotInitialized = errors.New("SSL is not initialized")

type state struct {
	tls    *tls.Config
	verify bool
}

// Provider implements transport.Provider.
type Provider struct {
	cfg    config.TLS
	guard  *keyfile.Guard
	logger *log.Logger

	current atomic.Pointer[state]
}

// New creates an uninitialized provider. guard checks the key file before
// it is loaded; nil skips the check.
func New(cfg config.TLS, guard *keyfile.Guard, logger *log.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		guard:  guard,
		logger: logger,
	}
}

// Init implements transport.Provider. Loading is the same at start and on
// reload; secure.Lifecycle makes a failed start fatal.
func (p *Provider) Init(isServerStart bool) error {
	st, err := p.load()
	if err != nil {
		return err
	}

	p.current.Store(st)
	return nil
}

// Destroy implements transport.Provider.
func (p *Provider) Destroy() {
	p.current.Store(nil)
}

// LoadedVerifyLocations implements transport.Provider.
func (p *Provider) LoadedVerifyLocations() bool {
	st := p.current.Load()
	return st != nil && st.verify
}

// Open implements transport.Provider.
func (p *Provider) Open(sock transport.Socket, wait transport.WaitFunc) (transport.Session, error) {
	st := p.current.Load()
	if st == nil {
		return nil, errNotInitialized
	}

	sio := &sockIO{sock: sock, wait: wait}
	tc := tls.Server(sio, st.tls)

	if err := tc.Handshake(); err != nil {
		// best effort delivery of the alert
		sio.Close()
		return nil, err
	}

	if err := sio.flush(); err != nil {
		return nil, err
	}
	sio.wait = nil

	return &session{tc: tc, io: sio}, nil
}

func (p *Provider) load() (*state, error) {
	c := p.cfg

	// Rejections are returned, never fatal here.
	if p.guard != nil && !p.guard.Check(c.KeyFile, false) {
		return nil, fmt.Errorf("private key file \"%s\" cannot be used", c.KeyFile)
	}

	certPEM, err := os.ReadFile(c.CertFile)
	if err != nil {
		return nil, fmt.Errorf("could not load server certificate file \"%s\": %s", c.CertFile, err)
	}
	keyPEM, err := os.ReadFile(c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("could not load private key file \"%s\": %s", c.KeyFile, err)
	}
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("could not load private key file \"%s\": %s", c.KeyFile, err)
	}

	minVersion, err := parseMinVersion(c.MinProtocolVersion)
	if err != nil {
		return nil, err
	}
	ciphers, err := parseCiphers(c.Ciphers)
	if err != nil {
		return nil, err
	}
	curves, err := parseCurve(c.ECDHCurve)
	if err != nil {
		return nil, err
	}

	tc := &tls.Config{
		Certificates:     []tls.Certificate{cert},
		MinVersion:       minVersion,
		CipherSuites:     ciphers,
		CurvePreferences: curves,
	}

	st := &state{tls: tc}

	if c.CAFile != "" {
		pool, cas, err := loadCAs(c.CAFile)
		if err != nil {
			return nil, err
		}
		tc.ClientCAs = pool
		tc.ClientAuth = tls.VerifyClientCertIfGiven
		st.verify = true

		if c.CRLFile != "" {
			revoked, err := revokedSerials(c.CRLFile, cas)
			if err != nil {
				return nil, err
			}
			tc.VerifyConnection = checkRevoked(revoked)
			p.logger.VerboseMsg("Loaded %d revoked certificate(s) from %s", len(revoked), c.CRLFile)
		}
	} else if c.CRLFile != "" {
		p.logger.WarnMsg("Ignoring certificate revocation list %s: no root certificate file configured", c.CRLFile)
	}

	return st, nil
}

var _ transport.Provider = (*Provider)(nil)
