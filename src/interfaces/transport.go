package interfaces

// -----------------------------------------------------------------------------
// ITransport abstracts the entire communication stack.
// -----------------------------------------------------------------------------

// ITransport decouples the server from any specific transport implementation
// (TLS over TCP today; anything that can move framed byte buffers tomorrow).
// Send and Receive operate on the currently active client session and block
// the caller until the underlying I/O completes or fails.
type ITransport interface {

	// -----------------------------------------------------------------------------

	// Start begins accepting connections. Idempotent: a second call while
	// running is a no-op. Startup failures (bad TLS material was caught at
	// construction; bind errors here) are returned to the caller.
	Start() error

	// -----------------------------------------------------------------------------

	// Stop tears down the listener, the active session, and the background
	// accept worker. Idempotent. Returns only after the worker has exited.
	Stop() error

	// -----------------------------------------------------------------------------

	// Send emits one framed message on the active session.
	Send(payload []byte) error

	// -----------------------------------------------------------------------------

	// Receive blocks for the next framed message on the active session.
	Receive() ([]byte, error)

	// -----------------------------------------------------------------------------

	// IsConnected reports whether an authenticated client session is active.
	IsConnected() bool
}
