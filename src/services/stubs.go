package services

import (
	"trading-server/src/interfaces"
	"trading-server/src/models"
)

// -----------------------------------------------------------------------------
// Stub services
//
// Minimal placeholder implementations of the service interfaces. They answer
// every request with a Success=false "not yet implemented" response, which
// keeps the full dispatch pipeline exercisable before (or without) the real
// services. The dispatch tests use them as lightweight fakes.
// -----------------------------------------------------------------------------

var _ interfaces.IMarketDataService = (*StubMarketDataService)(nil)

type StubMarketDataService struct {
	// Subscriptions records every Subscribe/Unsubscribe call in order, as
	// "+SYMBOL" / "-SYMBOL". Tests inspect it.
	Subscriptions []string
}

func (s *StubMarketDataService) GetData(models.MRequest) (models.MResponse, error) {
	return models.MResponse{Success: false, Message: "MarketDataService: not yet implemented"}, nil
}

func (s *StubMarketDataService) Subscribe(symbol string) {
	s.Subscriptions = append(s.Subscriptions, "+"+symbol)
}

func (s *StubMarketDataService) Unsubscribe(symbol string) {
	s.Subscriptions = append(s.Subscriptions, "-"+symbol)
}

// -----------------------------------------------------------------------------

var _ interfaces.ICalculationService = (*StubCalculationService)(nil)

type StubCalculationService struct{}

func (StubCalculationService) Calculate(models.MRequest) (models.MResponse, error) {
	return models.MResponse{Success: false, Message: "CalculationService: not yet implemented"}, nil
}

// -----------------------------------------------------------------------------

var _ interfaces.IManipulationService = (*StubManipulationService)(nil)

type StubManipulationService struct{}

func (StubManipulationService) Manipulate(models.MRequest) (models.MResponse, error) {
	return models.MResponse{Success: false, Message: "ManipulationService: not yet implemented"}, nil
}

func (StubManipulationService) Transform(models.MRequest) (models.MResponse, error) {
	return models.MResponse{Success: false, Message: "ManipulationService: not yet implemented"}, nil
}

// -----------------------------------------------------------------------------

var _ interfaces.IReportService = (*StubReportService)(nil)

type StubReportService struct{}

func (StubReportService) GenerateReport(req models.MReportRequest) (models.MResponse, error) {
	return models.MResponse{Success: false, Message: "ReportService: not yet implemented for " + req.ReportType}, nil
}
