package helpers

import (
	"fmt"

	"trading-server/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TradingServerError struct {
	Message string
	Cause   error
}

func (e *TradingServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TradingServerError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks at the dispatch and transport
// boundaries. Each wraps the base type so formatting and unwrapping behave
// the same everywhere.
//
// Propagation policy:
//   - TlsConfigError / BindError are fatal to Start() and reach the caller.
//   - IoError / FrameTooLargeError / ShortReadError terminate the current
//     session only; the listener keeps running.
//   - NotConnectedError is surfaced to Send/Receive callers.
//   - UnknownOpcodeError is converted by the facade into a failed response
//     and never escapes the dispatch boundary.
//   - HandshakeError is logged and the connection dropped; never fatal.
type (
	ConfigurationError struct{ TradingServerError }
	TlsConfigError     struct{ TradingServerError }
	BindError          struct{ TradingServerError }
	IoError            struct{ TradingServerError }
	NotConnectedError  struct{ TradingServerError }
	FrameTooLargeError struct{ TradingServerError }
	ShortReadError     struct{ TradingServerError }
	UnknownOpcodeError struct{ TradingServerError }
	HandshakeError     struct{ TradingServerError }
	DatabaseError      struct{ TradingServerError }
	ValidationError    struct{ TradingServerError }
)

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger                *logger.Logger
	ErrorCount            int
	MaxErrorsBeforeReport int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger("", "ErrorHandler")
	}
	return &ErrorHandler{
		Logger:                log,
		ErrorCount:            0,
		MaxErrorsBeforeReport: 10,
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.ErrorCount = 0
}

// -----------------------------------------------------------------------------

// Handle logs the error in its context and tracks a running error count so
// sustained failure bursts stand out in the log.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}
	e.ErrorCount++
	e.Logger.Error("Error in %s: %v", context, err)
	if e.ErrorCount%e.MaxErrorsBeforeReport == 0 {
		e.Logger.Warning("%d errors handled since last reset (latest in %s)", e.ErrorCount, context)
	}
}
