package interfaces

import "trading-server/src/models"

// -----------------------------------------------------------------------------
// ICommand abstracts a single server operation (Command pattern).
// -----------------------------------------------------------------------------

// ICommand is a single-shot executable object encapsulating the handling of
// one request. Commands are produced by the CommandRegistry and executed by
// the server facade; a command is not reusable across requests.
type ICommand interface {

	// -----------------------------------------------------------------------------

	// Execute performs the operation and returns the result. The error is
	// reserved for internal failures; client-level failures travel inside
	// the response with Success=false.
	Execute() (models.MResponse, error)
}

// -----------------------------------------------------------------------------

// CommandFactory produces a ready-to-execute command for a request. A factory
// must not mutate the registry it is stored in; the report factory uses the
// error return to reject payloads it cannot decode.
type CommandFactory func(request models.MRequest) (ICommand, error)
