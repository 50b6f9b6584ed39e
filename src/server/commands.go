package server

import (
	"trading-server/src/interfaces"
	"trading-server/src/models"
)

// -----------------------------------------------------------------------------
// Concrete commands — one per request type. Each binds exactly one service
// and the decoded request; Execute is a single call into the bound service.
// Decoding, validation and logging belong to the services and codecs, not
// here.
// -----------------------------------------------------------------------------

// GetMarketDataCommand retrieves market data for the parameters in the request.
type GetMarketDataCommand struct {
	Service interfaces.IMarketDataService
	Request models.MRequest
}

func (c *GetMarketDataCommand) Execute() (models.MResponse, error) {
	return c.Service.GetData(c.Request)
}

// -----------------------------------------------------------------------------

// CalculationCommand executes a financial calculation based on the request.
type CalculationCommand struct {
	Service interfaces.ICalculationService
	Request models.MRequest
}

func (c *CalculationCommand) Execute() (models.MResponse, error) {
	return c.Service.Calculate(c.Request)
}

// -----------------------------------------------------------------------------

// ManipulationCommand applies a data manipulation operation based on the request.
type ManipulationCommand struct {
	Service interfaces.IManipulationService
	Request models.MRequest
}

func (c *ManipulationCommand) Execute() (models.MResponse, error) {
	return c.Service.Manipulate(c.Request)
}

// -----------------------------------------------------------------------------

// ReportCommand triggers report generation. It is constructed from a decoded
// MReportRequest rather than the generic request: the GENERATE_REPORT factory
// performs the decode before command construction.
type ReportCommand struct {
	Service       interfaces.IReportService
	ReportRequest models.MReportRequest
}

func (c *ReportCommand) Execute() (models.MResponse, error) {
	return c.Service.GenerateReport(c.ReportRequest)
}
