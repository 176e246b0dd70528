package tlssession

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"
)

func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func TestNegotiate_HandshakeAndCoverRequest(t *testing.T) {
	cert := selfSignedCert(t)
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()

	serverErr := make(chan error, 1)
	received := make(chan []byte, 1)
	go func() {
		tlsServer := tls.Server(serverConn, &tls.Config{Certificates: []tls.Certificate{cert}})
		if err := tlsServer.Handshake(); err != nil {
			serverErr <- err
			return
		}
		buf := make([]byte, 64)
		n, err := tlsServer.Read(buf)
		if err != nil {
			serverErr <- err
			return
		}
		received <- buf[:n]
		serverErr <- nil
	}()

	sess, err := Negotiate(context.Background(), clientConn, "localhost")
	if err != nil {
		t.Fatalf("negotiate: %v", err)
	}
	defer sess.Close()

	if err := <-serverErr; err != nil {
		t.Fatalf("server side: %v", err)
	}
	got := <-received
	want := "GET /123456789 HTTP/1.0\r\n\r\n"
	if string(got) != want {
		t.Errorf("cover request = %q, want %q", got, want)
	}
}

func TestInitDeinit_RefcountBalances(t *testing.T) {
	Init()
	Init()
	Deinit()
	Deinit()
}

func TestDeinit_PanicsOnUnbalancedCall(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on unbalanced Deinit")
		}
	}()
	// Bring the shared refcount to a known-positive baseline, then
	// drain one extra to force it negative.
	Init()
	Deinit()
	Deinit()
}
