package transport

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"trading-server/src/helpers"
	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"
)

// Compile-time interface check.
var _ interfaces.ITransport = (*TLSTransport)(nil)

// -----------------------------------------------------------------------------
// TLSTransport
//
// Length-prefix framed TCP server over TLS. The server accepts one client
// connection at a time; after a client disconnects (or errors out) the
// accept loop is already waiting for the next one. Send and Receive perform
// synchronous framed I/O on the active session and are safe to call from
// any goroutine after Start returns.
// -----------------------------------------------------------------------------

const handshakeTimeout = 30 * time.Second

type TLSTransport struct {
	Config *models.MConfig
	Logger *logger.Logger

	tlsConfig *tls.Config
	maxFrame  uint32

	running  atomic.Bool
	listener net.Listener
	wg       sync.WaitGroup

	// connMu guards the session slot. Writers: the accept worker (on
	// handshake success) and Stop/dropSession. Readers: Send, Receive,
	// IsConnected.
	connMu sync.Mutex
	active *tls.Conn

	// ioMu serialises Send and Receive against each other. Teardown does
	// NOT take it: Stop closes the raw connection instead, which unblocks
	// any caller waiting inside a read or write.
	ioMu sync.Mutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewTLSTransport loads the PEM certificate and key and prepares the TLS
// configuration. SSLv2/SSLv3 cannot occur: the minimum accepted protocol
// version is TLS 1.2. Client certificates are not requested in this
// iteration; flip MConfig.TLS.RequireClientCert to demand them.
func NewTLSTransport(cfg *models.MConfig, log *logger.Logger) (*TLSTransport, error) {
	cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, &helpers.TlsConfigError{TradingServerError: helpers.TradingServerError{
			Message: fmt.Sprintf("failed to load certificate %q / key %q", cfg.TLS.CertFile, cfg.TLS.KeyFile),
			Cause:   err,
		}}
	}

	clientAuth := tls.NoClientCert
	if cfg.TLS.RequireClientCert {
		clientAuth = tls.RequireAndVerifyClientCert
	}

	maxFrame := cfg.Framing.MaxFrameBytes
	if maxFrame == 0 {
		maxFrame = 16 << 20
	}

	return &TLSTransport{
		Config: cfg,
		Logger: log,
		tlsConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
			ClientAuth:   clientAuth,
		},
		maxFrame: maxFrame,
	}, nil
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start binds the listener and launches the accept worker. Idempotent.
func (t *TLSTransport) Start() error {
	if !t.running.CompareAndSwap(false, true) {
		return nil // already started
	}

	addr := fmt.Sprintf("%s:%d", t.Config.Host, t.Config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		t.running.Store(false)
		return &helpers.BindError{TradingServerError: helpers.TradingServerError{
			Message: fmt.Sprintf("failed to bind %s", addr),
			Cause:   err,
		}}
	}
	t.listener = listener

	t.Logger.Info("Listening on %s", listener.Addr())

	t.wg.Add(1)
	go t.acceptLoop()

	return nil
}

// -----------------------------------------------------------------------------

// Stop closes the listener and the active session, then waits for the
// accept worker to exit. Idempotent. Any caller blocked in Send or Receive
// is released with an IoError when its connection closes.
func (t *TLSTransport) Stop() error {
	if !t.running.CompareAndSwap(true, false) {
		return nil // already stopped
	}

	if t.listener != nil {
		t.listener.Close()
	}

	t.connMu.Lock()
	if t.active != nil {
		t.active.Close()
		t.active = nil
	}
	t.connMu.Unlock()

	t.wg.Wait()

	t.Logger.Info("Stopped.")
	return nil
}

// -----------------------------------------------------------------------------

// Addr returns the bound listener address, or "" before Start. Useful when
// the configured port is 0.
func (t *TLSTransport) Addr() string {
	if t.listener == nil {
		return ""
	}
	return t.listener.Addr().String()
}

// -----------------------------------------------------------------------------

// IsConnected reports whether an authenticated client session is active.
func (t *TLSTransport) IsConnected() bool {
	t.connMu.Lock()
	defer t.connMu.Unlock()
	return t.active != nil
}

// -----------------------------------------------------------------------------
// Accept worker
// -----------------------------------------------------------------------------

// acceptLoop runs on the background worker: at any time there is at most
// one outstanding accept, and the loop alternates accept → handshake until
// Stop closes the listener. A handshake failure drops that connection only;
// the loop keeps serving.
func (t *TLSTransport) acceptLoop() {
	defer t.wg.Done()

	for t.running.Load() {
		conn, err := t.listener.Accept()
		if err != nil {
			if !t.running.Load() {
				return // listener closed by Stop — not an error
			}
			t.Logger.Error("accept error: %v", err)
			continue
		}

		t.Logger.Info("Accepted connection from %s", conn.RemoteAddr())

		// Disable Nagle for low-latency trading traffic.
		if tcp, ok := conn.(*net.TCPConn); ok {
			tcp.SetNoDelay(true)
		}

		tlsConn := tls.Server(conn, t.tlsConfig)
		conn.SetDeadline(time.Now().Add(handshakeTimeout))
		if err := tlsConn.Handshake(); err != nil {
			hErr := &helpers.HandshakeError{TradingServerError: helpers.TradingServerError{
				Message: fmt.Sprintf("TLS handshake with %s failed", conn.RemoteAddr()),
				Cause:   err,
			}}
			t.Logger.Error("%v", hErr)
			tlsConn.Close()
			continue // never fatal — go back to accepting
		}
		conn.SetDeadline(time.Time{})

		t.Logger.Info("TLS handshake complete (%s)", conn.RemoteAddr())

		t.connMu.Lock()
		if t.active != nil {
			// A newer client replaces a stale session.
			t.active.Close()
		}
		t.active = tlsConn
		t.connMu.Unlock()
	}
}

// -----------------------------------------------------------------------------
// Framed I/O
// -----------------------------------------------------------------------------

// Send emits a single framed message (header + payload in one write) on the
// active session.
func (t *TLSTransport) Send(payload []byte) error {
	conn, err := t.session("send")
	if err != nil {
		return err
	}

	frame, err := EncodeFrame(payload, t.maxFrame)
	if err != nil {
		return err
	}

	t.ioMu.Lock()
	defer t.ioMu.Unlock()

	if _, err := conn.Write(frame); err != nil {
		t.dropSession(conn)
		return &helpers.IoError{TradingServerError: helpers.TradingServerError{
			Message: "send failed",
			Cause:   err,
		}}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Receive blocks for the next framed message on the active session. Framing
// violations (oversized frame, truncated stream) and stream errors all drop
// the session; the accept loop is still armed for the next client.
func (t *TLSTransport) Receive() ([]byte, error) {
	conn, err := t.session("receive")
	if err != nil {
		return nil, err
	}

	t.ioMu.Lock()
	defer t.ioMu.Unlock()

	payload, err := ReadFrame(conn, t.maxFrame)
	if err != nil {
		t.dropSession(conn)
		var tooLarge *helpers.FrameTooLargeError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &helpers.IoError{TradingServerError: helpers.TradingServerError{
			Message: "receive failed",
			Cause:   err,
		}}
	}
	return payload, nil
}

// -----------------------------------------------------------------------------

// session returns the active connection or a NotConnectedError.
func (t *TLSTransport) session(op string) (*tls.Conn, error) {
	t.connMu.Lock()
	defer t.connMu.Unlock()
	if t.active == nil {
		return nil, &helpers.NotConnectedError{TradingServerError: helpers.TradingServerError{
			Message: op + ": no active connection",
		}}
	}
	return t.active, nil
}

// -----------------------------------------------------------------------------

// dropSession closes conn and clears the slot if it still holds conn. The
// slot may already hold a newer session; that one is left alone.
func (t *TLSTransport) dropSession(conn *tls.Conn) {
	conn.Close()
	t.connMu.Lock()
	if t.active == conn {
		t.active = nil
	}
	t.connMu.Unlock()
}
