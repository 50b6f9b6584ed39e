package transport

import (
	"crypto/tls"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-server/src/helpers"
	"trading-server/src/logger"
	"trading-server/src/models"
)

// -----------------------------------------------------------------------------
// Test helpers
// -----------------------------------------------------------------------------

func testConfig(t *testing.T) *models.MConfig {
	t.Helper()
	dir := t.TempDir()
	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	require.NoError(t, GenerateDevCertificate(certPath, keyPath))

	return &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     0, // ephemeral
		LogLevel: "ERROR",
		TLS: models.MTLSConfig{
			CertFile: certPath,
			KeyFile:  keyPath,
		},
	}
}

func startTransport(t *testing.T) *TLSTransport {
	t.Helper()
	tr, err := NewTLSTransport(testConfig(t), logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	require.NoError(t, tr.Start())
	t.Cleanup(func() { tr.Stop() })
	return tr
}

func dialTransport(t *testing.T, tr *TLSTransport) *tls.Conn {
	t.Helper()
	conn, err := tls.Dial("tcp", tr.Addr(), &tls.Config{InsecureSkipVerify: true})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitConnected blocks until the server side has completed the handshake.
func waitConnected(t *testing.T, tr *TLSTransport) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !tr.IsConnected() {
		require.True(t, time.Now().Before(deadline), "server never saw the connection")
		time.Sleep(5 * time.Millisecond)
	}
}

// -----------------------------------------------------------------------------

func TestNewTLSTransportMissingCertificate(t *testing.T) {
	cfg := testConfig(t)
	cfg.TLS.CertFile = filepath.Join(t.TempDir(), "missing.crt")

	_, err := NewTLSTransport(cfg, logger.NewLogger("ERROR", "test"))

	var tlsErr *helpers.TlsConfigError
	require.ErrorAs(t, err, &tlsErr)
}

// -----------------------------------------------------------------------------

func TestStartBindError(t *testing.T) {
	first := startTransport(t)

	cfg := testConfig(t)
	cfg.Port = first.listener.Addr().(*net.TCPAddr).Port

	second, err := NewTLSTransport(cfg, logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)

	err = second.Start()
	var bindErr *helpers.BindError
	require.ErrorAs(t, err, &bindErr)

	// A failed Start leaves the transport stoppable and restartable.
	require.NoError(t, second.Stop())
}

// -----------------------------------------------------------------------------

func TestSendReceiveRoundTrip(t *testing.T) {
	tr := startTransport(t)
	conn := dialTransport(t, tr)
	waitConnected(t, tr)

	// Client → server
	frame, err := EncodeFrame([]byte("ping"), 1<<20)
	require.NoError(t, err)
	_, err = conn.Write(frame)
	require.NoError(t, err)

	got, err := tr.Receive()
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), got)

	// Server → client
	require.NoError(t, tr.Send([]byte("pong")))

	reply, err := ReadFrame(conn, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), reply)
}

// -----------------------------------------------------------------------------

func TestSendWithoutConnection(t *testing.T) {
	tr := startTransport(t)

	err := tr.Send([]byte("nobody home"))

	var notConnected *helpers.NotConnectedError
	require.ErrorAs(t, err, &notConnected)
}

// -----------------------------------------------------------------------------

func TestReceiveWithoutConnection(t *testing.T) {
	tr := startTransport(t)

	_, err := tr.Receive()

	var notConnected *helpers.NotConnectedError
	require.ErrorAs(t, err, &notConnected)
}

// -----------------------------------------------------------------------------

func TestClientDisconnectDropsSession(t *testing.T) {
	tr := startTransport(t)
	conn := dialTransport(t, tr)
	waitConnected(t, tr)

	conn.Close()

	_, err := tr.Receive()
	var ioErr *helpers.IoError
	require.ErrorAs(t, err, &ioErr)
	assert.False(t, tr.IsConnected())

	// The accept loop is still armed: a new client can connect.
	dialTransport(t, tr)
	waitConnected(t, tr)
}

// -----------------------------------------------------------------------------

func TestOversizedFrameDropsSession(t *testing.T) {
	cfg := testConfig(t)
	cfg.Framing.MaxFrameBytes = 64
	tr, err := NewTLSTransport(cfg, logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	require.NoError(t, tr.Start())
	t.Cleanup(func() { tr.Stop() })

	conn := dialTransport(t, tr)
	waitConnected(t, tr)

	// Advertise a payload above the cap. The header alone triggers the error.
	oversized, err := EncodeFrame(make([]byte, 65), 1<<20)
	require.NoError(t, err)
	_, err = conn.Write(oversized)
	require.NoError(t, err)

	_, err = tr.Receive()
	var tooLarge *helpers.FrameTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.False(t, tr.IsConnected())
}

// -----------------------------------------------------------------------------

func TestHandshakeFailureIsNotFatal(t *testing.T) {
	tr := startTransport(t)

	// A plaintext client cannot complete the TLS handshake.
	raw, err := net.Dial("tcp", tr.Addr())
	require.NoError(t, err)
	raw.Write([]byte("this is not a client hello"))
	raw.Close()

	// The listener keeps serving: a real TLS client still gets through.
	dialTransport(t, tr)
	waitConnected(t, tr)
}

// -----------------------------------------------------------------------------

func TestStartStopIdempotent(t *testing.T) {
	tr, err := NewTLSTransport(testConfig(t), logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)

	require.NoError(t, tr.Start())
	require.NoError(t, tr.Start()) // second Start is a no-op

	require.NoError(t, tr.Stop())
	require.NoError(t, tr.Stop()) // second Stop is a no-op
}

// -----------------------------------------------------------------------------

func TestStopUnblocksReceive(t *testing.T) {
	tr := startTransport(t)
	dialTransport(t, tr)
	waitConnected(t, tr)

	done := make(chan error, 1)
	go func() {
		_, err := tr.Receive()
		done <- err
	}()

	// Give the receiver time to block on the socket.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, tr.Stop())

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Receive still blocked after Stop")
	}
}
