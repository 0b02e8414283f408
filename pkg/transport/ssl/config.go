package ssl

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"dominicbreuker/securesock/pkg/config"
)

var curves = map[string]tls.CurveID{
	"prime256v1": tls.CurveP256,
	"secp256r1":  tls.CurveP256,
	"p-256":      tls.CurveP256,
	"secp384r1":  tls.CurveP384,
	"p-384":      tls.CurveP384,
	"secp521r1":  tls.CurveP521,
	"p-521":      tls.CurveP521,
	"x25519":     tls.X25519,
}

// parseCiphers maps a ':' or ',' separated list of cipher suite names to
// suite ids. An empty list selects Go's defaults.
func parseCiphers(list string) ([]uint16, error) {
	names := strings.FieldsFunc(list, func(r rune) bool {
		return r == ':' || r == ',' || r == ' '
	})
	if len(names) == 0 {
		return nil, nil
	}

	known := make(map[string]uint16)
	for _, cs := range tls.CipherSuites() {
		known[cs.Name] = cs.ID
	}

	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("could not set the cipher list: unknown cipher suite %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseCurve returns the preference list for a curve name, or nil for the
// default preferences.
func parseCurve(name string) ([]tls.CurveID, error) {
	if name == "" {
		return nil, nil
	}

	id, ok := curves[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("ECDH: unrecognized curve name: %s", name)
	}
	return []tls.CurveID{id}, nil
}

func parseMinVersion(v string) (uint16, error) {
	switch v {
	case "", config.TLSv12:
		return tls.VersionTLS12, nil
	case config.TLSv13:
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported minimum protocol version %q", v)
	}
}

// loadCAs reads the root certificates used to verify client certificates.
func loadCAs(path string) (*x509.CertPool, []*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load root certificate file \"%s\": %s", path, err)
	}

	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, nil, fmt.Errorf("could not load root certificate file \"%s\": %s", path, err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, nil, fmt.Errorf("could not load root certificate file \"%s\": no certificates found", path)
	}

	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool, certs, nil
}

// revokedSerials reads a PEM or DER encoded CRL. When issuers are given
// the list must be signed by one of them.
func revokedSerials(path string, issuers []*x509.Certificate) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not load SSL certificate revocation list file \"%s\": %s", path, err)
	}

	if block, _ := pem.Decode(data); block != nil {
		data = block.Bytes
	}

	crl, err := x509.ParseRevocationList(data)
	if err != nil {
		return nil, fmt.Errorf("could not load SSL certificate revocation list file \"%s\": %s", path, err)
	}

	if len(issuers) > 0 {
		var sigErr error
		for _, issuer := range issuers {
			if sigErr = crl.CheckSignatureFrom(issuer); sigErr == nil {
				break
			}
		}
		if sigErr != nil {
			return nil, fmt.Errorf("could not load SSL certificate revocation list file \"%s\": %s", path, sigErr)
		}
	}

	revoked := make(map[string]struct{}, len(crl.RevokedCertificateEntries))
	for _, e := range crl.RevokedCertificateEntries {
		revoked[serialKey(e.SerialNumber)] = struct{}{}
	}
	return revoked, nil
}

var errRevoked = errors.New("certificate revoked")

// checkRevoked rejects a handshake whose client presented a revoked
// certificate.
func checkRevoked(revoked map[string]struct{}) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		for _, cert := range cs.PeerCertificates {
			if _, ok := revoked[serialKey(cert.SerialNumber)]; ok {
				return fmt.Errorf("%w: serial %s, subject %q", errRevoked, cert.SerialNumber, cert.Subject.CommonName)
			}
		}
		return nil
	}
}

func serialKey(n *big.Int) string {
	return n.Text(16)
}
