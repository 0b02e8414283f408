package crypto

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthority(t *testing.T) {
	t.Parallel()

	ca, err := NewAuthority("")
	require.NoError(t, err)
	assert.True(t, ca.Cert.IsCA)
	assert.Contains(t, ca.Cert.Subject.CommonName, "securesock CA ")

	keyPEM, err := ca.KeyPEM()
	require.NoError(t, err)
	_, err = tls.X509KeyPair(ca.CertPEM, keyPEM)
	assert.NoError(t, err)
}

func TestIssue_ServerVerifiesAgainstCA(t *testing.T) {
	t.Parallel()

	ca, err := NewAuthority("test CA")
	require.NoError(t, err)

	srv, err := ca.Issue(IssueOptions{CommonName: "localhost", Hosts: []string{"localhost", "127.0.0.1"}})
	require.NoError(t, err)

	_, err = tls.X509KeyPair(srv.CertPEM, srv.KeyPEM)
	require.NoError(t, err)

	pool := x509.NewCertPool()
	require.True(t, pool.AppendCertsFromPEM(ca.CertPEM))

	_, err = srv.Cert.Verify(x509.VerifyOptions{Roots: pool, DNSName: "localhost"})
	assert.NoError(t, err)
	assert.Len(t, srv.Cert.IPAddresses, 1)
}

func TestIssue_Client(t *testing.T) {
	t.Parallel()

	ca, err := NewAuthority("test CA")
	require.NoError(t, err)

	cl, err := ca.Issue(IssueOptions{CommonName: "alice", Client: true})
	require.NoError(t, err)
	assert.Equal(t, "alice", cl.Cert.Subject.CommonName)
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}, cl.Cert.ExtKeyUsage)
}

func TestRevocationList(t *testing.T) {
	t.Parallel()

	ca, err := NewAuthority("test CA")
	require.NoError(t, err)
	cl, err := ca.Issue(IssueOptions{CommonName: "mallory", Client: true})
	require.NoError(t, err)

	crlPEM, err := ca.RevocationList(cl.Cert.SerialNumber)
	require.NoError(t, err)

	block, _ := pem.Decode(crlPEM)
	require.NotNil(t, block)
	crl, err := x509.ParseRevocationList(block.Bytes)
	require.NoError(t, err)
	require.NoError(t, crl.CheckSignatureFrom(ca.Cert))
	require.Len(t, crl.RevokedCertificateEntries, 1)
	assert.Equal(t, 0, cl.Cert.SerialNumber.Cmp(crl.RevokedCertificateEntries[0].SerialNumber))
}

func TestWriteFile_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	t.Parallel()

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "server.key")
	certPath := filepath.Join(dir, "server.crt")

	require.NoError(t, WriteFile(keyPath, []byte("key"), true))
	require.NoError(t, WriteFile(certPath, []byte("cert"), false))

	fi, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	fi, err = os.Stat(certPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}

func TestGenerateRandomString(t *testing.T) {
	t.Parallel()

	a, err := GenerateRandomString(16)
	require.NoError(t, err)
	b, err := GenerateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
