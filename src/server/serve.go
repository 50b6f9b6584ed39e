package server

import (
	"context"
	"errors"
	"time"

	"trading-server/src/helpers"
	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"
)

// -----------------------------------------------------------------------------
// RequestLoop
//
// Bridges the transport and the facade: receive a frame, decode the request,
// hand it to the facade, send the encoded response back. One loop iteration
// per request; the loop runs until the context is cancelled.
// -----------------------------------------------------------------------------

// idleRetryDelay is how long the loop sleeps when no client is connected
// before polling the transport again.
const idleRetryDelay = 50 * time.Millisecond

type RequestLoop struct {
	Transport interfaces.ITransport
	Facade    interfaces.IServerFacade
	Logger    *logger.Logger
	Errors    *helpers.ErrorHandler
}

// -----------------------------------------------------------------------------

func NewRequestLoop(transport interfaces.ITransport, facade interfaces.IServerFacade, log *logger.Logger) *RequestLoop {
	return &RequestLoop{
		Transport: transport,
		Facade:    facade,
		Logger:    log,
		Errors:    helpers.NewErrorHandler(log),
	}
}

// -----------------------------------------------------------------------------

// Run serves requests until ctx is cancelled. Transport-level errors drop
// the current session but never the loop; a malformed request gets a failure
// response and the session keeps serving.
func (l *RequestLoop) Run(ctx context.Context) {
	l.Logger.Info("Request loop started.")

	for {
		select {
		case <-ctx.Done():
			l.Logger.Info("Request loop stopped: %v", ctx.Err())
			return
		default:
		}

		payload, err := l.Transport.Receive()
		if err != nil {
			var notConnected *helpers.NotConnectedError
			if errors.As(err, &notConnected) {
				time.Sleep(idleRetryDelay)
				continue
			}
			l.Errors.Handle(err, "receive")
			continue
		}

		request, err := models.DecodeRequest(payload)
		if err != nil {
			l.Logger.Warning("malformed request: %v", err)
			l.respond(models.MResponse{
				Success: false,
				Message: "Malformed request: " + err.Error(),
			})
			continue
		}

		l.respond(l.Facade.HandleRequest(request))
	}
}

// -----------------------------------------------------------------------------

func (l *RequestLoop) respond(response models.MResponse) {
	if err := l.Transport.Send(models.EncodeResponse(response)); err != nil {
		l.Errors.Handle(err, "send response")
	}
}
