package server

import (
	"errors"
	"fmt"

	"trading-server/src/helpers"
	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"
)

// Compile-time interface check.
var _ interfaces.IServerFacade = (*TradingServerFacade)(nil)

// -----------------------------------------------------------------------------
// TradingServerFacade
//
// Single entry point between the transport and the business services. The
// facade owns the command registry and the error boundary: whatever goes
// wrong inside a command — unknown request type, service failure, even a
// panic — the caller always gets a well-formed failure response and the
// connection keeps serving.
// -----------------------------------------------------------------------------

type TradingServerFacade struct {
	MarketData   interfaces.IMarketDataService
	Calculation  interfaces.ICalculationService
	Manipulation interfaces.IManipulationService
	Reports      interfaces.IReportService

	Registry *CommandRegistry
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewTradingServerFacade(
	marketData interfaces.IMarketDataService,
	calculation interfaces.ICalculationService,
	manipulation interfaces.IManipulationService,
	reports interfaces.IReportService,
	registry *CommandRegistry,
	log *logger.Logger,
) *TradingServerFacade {
	return &TradingServerFacade{
		MarketData:   marketData,
		Calculation:  calculation,
		Manipulation: manipulation,
		Reports:      reports,
		Registry:     registry,
		Logger:       log,
	}
}

// -----------------------------------------------------------------------------

// HandleRequest resolves the request to a command and executes it. It never
// returns an error and never panics outward: failures come back to the
// client as Success=false responses with a diagnostic message.
func (f *TradingServerFacade) HandleRequest(request models.MRequest) (response models.MResponse) {
	defer func() {
		if r := recover(); r != nil {
			f.Logger.Error("panic while handling %s request: %v", request.Type, r)
			response = models.MResponse{
				Success: false,
				Message: fmt.Sprintf("Internal server error: %v", r),
			}
		}
	}()

	f.Logger.Debug("handling %s request (%d payload bytes)", request.Type, len(request.Payload))

	command, err := f.Registry.Create(request)
	if err != nil {
		var unknown *helpers.UnknownOpcodeError
		if errors.As(err, &unknown) {
			f.Logger.Warning("unknown request type %d", uint32(request.Type))
			return models.MResponse{
				Success: false,
				Message: "Unknown request type: " + err.Error(),
			}
		}
		f.Logger.Error("command construction failed: %v", err)
		return models.MResponse{
			Success: false,
			Message: "Internal server error: " + err.Error(),
		}
	}

	response, err = command.Execute()
	if err != nil {
		f.Logger.Error("%s command failed: %v", request.Type, err)
		return models.MResponse{
			Success: false,
			Message: "Internal server error: " + err.Error(),
		}
	}
	return response
}

// -----------------------------------------------------------------------------
// Default wiring
// -----------------------------------------------------------------------------

// RegisterDefaultCommands installs the four standard factories. The report
// factory decodes and validates the report request body before constructing
// the command, so a malformed or inconsistent date range fails fast without
// touching the report service.
func RegisterDefaultCommands(
	registry *CommandRegistry,
	marketData interfaces.IMarketDataService,
	calculation interfaces.ICalculationService,
	manipulation interfaces.IManipulationService,
	reports interfaces.IReportService,
) {
	registry.Register(models.GetMarketData, func(req models.MRequest) (interfaces.ICommand, error) {
		return &GetMarketDataCommand{Service: marketData, Request: req}, nil
	})
	registry.Register(models.Calculate, func(req models.MRequest) (interfaces.ICommand, error) {
		return &CalculationCommand{Service: calculation, Request: req}, nil
	})
	registry.Register(models.Manipulate, func(req models.MRequest) (interfaces.ICommand, error) {
		return &ManipulationCommand{Service: manipulation, Request: req}, nil
	})
	registry.Register(models.GenerateReport, func(req models.MRequest) (interfaces.ICommand, error) {
		reportReq, err := models.DecodeReportRequest(req.Payload)
		if err != nil {
			return nil, err
		}
		if err := reportReq.Validate(); err != nil {
			return nil, err
		}
		return &ReportCommand{Service: reports, ReportRequest: reportReq}, nil
	})
}
