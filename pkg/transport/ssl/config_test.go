package ssl

import (
	"crypto/tls"
	"crypto/x509"
	"math/big"
	"path/filepath"
	"testing"

	"dominicbreuker/securesock/pkg/config"
	"dominicbreuker/securesock/pkg/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCiphers(t *testing.T) {
	t.Parallel()

	ids, err := parseCiphers("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = parseCiphers("TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256:TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384, TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256")
	require.NoError(t, err)
	assert.Equal(t, []uint16{
		tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
	}, ids)

	_, err = parseCiphers("HIGH:MEDIUM:+3DES:!aNULL")
	assert.ErrorContains(t, err, "could not set the cipher list")
}

func TestParseCurve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    []tls.CurveID
		wantErr bool
	}{
		{name: "", want: nil},
		{name: "prime256v1", want: []tls.CurveID{tls.CurveP256}},
		{name: "P-384", want: []tls.CurveID{tls.CurveP384}},
		{name: "secp521r1", want: []tls.CurveID{tls.CurveP521}},
		{name: "X25519", want: []tls.CurveID{tls.X25519}},
		{name: "brainpoolP256r1", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseCurve(tc.name)
			if tc.wantErr {
				assert.ErrorContains(t, err, "unrecognized curve name")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseMinVersion(t *testing.T) {
	t.Parallel()

	v, err := parseMinVersion("")
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), v)

	v, err = parseMinVersion(config.TLSv13)
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS13), v)

	_, err = parseMinVersion("TLSv1")
	assert.Error(t, err)
}

func TestLoadCAs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ca, err := crypto.NewAuthority("test CA")
	require.NoError(t, err)

	path := filepath.Join(dir, "root.crt")
	require.NoError(t, crypto.WriteFile(path, ca.CertPEM, false))

	pool, certs, err := loadCAs(path)
	require.NoError(t, err)
	assert.NotNil(t, pool)
	require.Len(t, certs, 1)
	assert.Equal(t, "test CA", certs[0].Subject.CommonName)

	empty := filepath.Join(dir, "empty.crt")
	require.NoError(t, crypto.WriteFile(empty, []byte("nothing here"), false))
	_, _, err = loadCAs(empty)
	assert.ErrorContains(t, err, "no certificates found")

	_, _, err = loadCAs(filepath.Join(dir, "missing.crt"))
	assert.ErrorContains(t, err, "could not load root certificate file")
}

func TestRevokedSerials(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ca, err := crypto.NewAuthority("test CA")
	require.NoError(t, err)
	other, err := crypto.NewAuthority("other CA")
	require.NoError(t, err)

	crlPEM, err := ca.RevocationList(big.NewInt(42), big.NewInt(7))
	require.NoError(t, err)
	path := filepath.Join(dir, "root.crl")
	require.NoError(t, crypto.WriteFile(path, crlPEM, false))

	revoked, err := revokedSerials(path, []*x509.Certificate{ca.Cert})
	require.NoError(t, err)
	assert.Len(t, revoked, 2)
	assert.Contains(t, revoked, serialKey(big.NewInt(42)))

	_, err = revokedSerials(path, []*x509.Certificate{other.Cert})
	assert.ErrorContains(t, err, "revocation list")

	check := checkRevoked(revoked)
	cert := &x509.Certificate{SerialNumber: big.NewInt(7)}
	assert.ErrorIs(t, check(tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}), errRevoked)
	cert = &x509.Certificate{SerialNumber: big.NewInt(8)}
	assert.NoError(t, check(tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}))
	assert.NoError(t, check(tls.ConnectionState{}))
}
