package server

import (
	"fmt"

	"trading-server/src/helpers"
	"trading-server/src/interfaces"
	"trading-server/src/models"
)

// -----------------------------------------------------------------------------
// CommandRegistry
// -----------------------------------------------------------------------------

// CommandRegistry maps request types to command factories. Register every
// factory during application startup (in cmd/main or a dedicated wiring
// function); at runtime the facade calls Create to instantiate the command
// for each incoming request.
//
// The registry is populated once during bootstrap and read-only while
// serving, so it carries no internal locking. Re-registering a type
// replaces the previous factory.
type CommandRegistry struct {
	factories map[models.RequestType]interfaces.CommandFactory
}

// -----------------------------------------------------------------------------

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		factories: make(map[models.RequestType]interfaces.CommandFactory),
	}
}

// -----------------------------------------------------------------------------

// Register associates a factory with a request type. Last write wins.
func (r *CommandRegistry) Register(t models.RequestType, factory interfaces.CommandFactory) {
	r.factories[t] = factory
}

// -----------------------------------------------------------------------------

// Create instantiates the command for the request. A request type with no
// registered factory yields an UnknownOpcodeError.
func (r *CommandRegistry) Create(request models.MRequest) (interfaces.ICommand, error) {
	factory, ok := r.factories[request.Type]
	if !ok {
		return nil, &helpers.UnknownOpcodeError{TradingServerError: helpers.TradingServerError{
			Message: fmt.Sprintf("no command registered for request type %s", request.Type),
		}}
	}
	return factory(request)
}
