// Package crypto generates the certificate material securesock runs with
// when no real PKI is at hand: a self-signed CA, server and client
// certificates issued by it, and revocation lists.
package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

const validity = 10 * 365 * 24 * time.Hour

// Authority is a CA able to issue certificates and revocation lists.
type Authority struct {
	Cert    *x509.Certificate
	Key     *ecdsa.PrivateKey
	CertPEM []byte
}

// Issued is a certificate and its private key, PEM encoded.
type Issued struct {
	Cert    *x509.Certificate
	CertPEM []byte
	KeyPEM  []byte
}

// IssueOptions describes a certificate to issue.
type IssueOptions struct {
	CommonName string
	// Hosts become DNS or IP subject alternative names.
	Hosts []string
	// Client issues a client authentication certificate instead of a
	// server certificate.
	Client bool
}

// NewAuthority creates a self-signed CA. An empty commonName picks a
// random one.
func NewAuthority(commonName string) (*Authority, error) {
	if commonName == "" {
		rnd, err := GenerateRandomString(8)
		if err != nil {
			return nil, fmt.Errorf("GenerateRandomString(8): %s", err)
		}
		commonName = "securesock CA " + rnd
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("ecdsa.GenerateKey(P256): %s", err)
	}

	serial, err := randomSerial()
	if err != nil {
		return nil, fmt.Errorf("serial number: %s", err)
	}

	now := time.Now()
	tmpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName, Organization: []string{"securesock"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(validity),
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("creating CA certificate: %s", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("x509.ParseCertificate(ca): %s", err)
	}

	return &Authority{
		Cert:    cert,
		Key:     key,
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}, nil
}

// KeyPEM returns the CA's private key, PEM encoded.
func (a *Authority) KeyPEM() ([]byte, error) {
	return marshalKey(a.Key)
}

// Issue creates a certificate signed by the CA.
func (a *Authority) Issue(opts IssueOptions) (*Issued, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("ecdsa.GenerateKey(P256): %s", err)
	}

	serial, err := randomSerial()
	if err != nil {
		return nil, fmt.Errorf("serial number: %s", err)
	}

	now := time.Now()
	tmpl := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: opts.CommonName},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(validity),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	if opts.Client {
		tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
	}
	for _, h := range opts.Hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, a.Cert, &key.PublicKey, a.Key)
	if err != nil {
		return nil, fmt.Errorf("creating certificate for %q: %s", opts.CommonName, err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("x509.ParseCertificate(%q): %s", opts.CommonName, err)
	}

	keyPEM, err := marshalKey(key)
	if err != nil {
		return nil, err
	}

	return &Issued{
		Cert:    cert,
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:  keyPEM,
	}, nil
}

// RevocationList returns a PEM encoded CRL revoking the given serials.
func (a *Authority) RevocationList(serials ...*big.Int) ([]byte, error) {
	now := time.Now()
	tmpl := x509.RevocationList{
		Number:     big.NewInt(now.Unix()),
		ThisUpdate: now.Add(-time.Hour),
		NextUpdate: now.Add(validity),
	}
	for _, s := range serials {
		tmpl.RevokedCertificateEntries = append(tmpl.RevokedCertificateEntries, x509.RevocationListEntry{
			SerialNumber:   s,
			RevocationTime: now.Add(-time.Minute),
		})
	}

	der, err := x509.CreateRevocationList(rand.Reader, &tmpl, a.Cert, a.Key)
	if err != nil {
		return nil, fmt.Errorf("x509.CreateRevocationList(): %s", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: der}), nil
}

// WriteFile writes PEM data to path. Private keys must be written with
// private set, which restricts the file to its owner (0600) regardless of
// the umask.
func WriteFile(path string, data []byte, private bool) error {
	perm := os.FileMode(0o644)
	if private {
		perm = 0o600
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %s", path, err)
	}
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("chmod %s: %s", path, err)
	}
	return nil
}

func marshalKey(key *ecdsa.PrivateKey) ([]byte, error) {
	b, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal ECDSA private key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: b}), nil
}
