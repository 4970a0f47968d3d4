package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSelfSigned(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "msgrisk.local"},
		DNSNames:     []string{"msgrisk.local"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IsCA:         true,
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	tmpl.BasicConstraintsValid = true
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "server.pem")
	keyFile = filepath.Join(dir, "server-key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func TestServerConfig(t *testing.T) {
	certFile, keyFile := writeSelfSigned(t, t.TempDir())

	cfg, err := ServerConfig(certFile, keyFile)
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.Equal(t, "tls", GRPCCredentials(cfg).Info().SecurityProtocol)
}

func TestServerConfig_MissingFiles(t *testing.T) {
	_, err := ServerConfig("/nonexistent/cert.pem", "/nonexistent/key.pem")
	require.Error(t, err)
}

func TestClientConfig(t *testing.T) {
	dir := t.TempDir()
	certFile, _ := writeSelfSigned(t, dir)

	cfg, err := ClientConfig(certFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg.RootCAs)

	cfg, err = ClientConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg.RootCAs)

	bogus := filepath.Join(dir, "bogus.pem")
	require.NoError(t, os.WriteFile(bogus, []byte("not a cert"), 0o600))
	_, err = ClientConfig(bogus)
	require.Error(t, err)
}
