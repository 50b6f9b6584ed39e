package interfaces

import "trading-server/src/models"

// -----------------------------------------------------------------------------
// Service interfaces — one per business domain. Commands bind exactly one of
// these and forward their bound request to it on Execute.
//
// Convention for all service methods returning (MResponse, error): a
// client-level failure (bad payload, unknown symbol, unknown report type)
// is a Success=false response with a nil error; the error return is for
// internal failures (storage down, bugs) and is converted by the facade
// into an "Internal server error" response.
// -----------------------------------------------------------------------------

// IMarketDataService provides access to market data snapshots.
type IMarketDataService interface {

	// -----------------------------------------------------------------------------

	// GetData retrieves market data according to the request payload.
	GetData(request models.MRequest) (models.MResponse, error)

	// -----------------------------------------------------------------------------

	// Subscribe registers interest in real-time updates for a symbol.
	Subscribe(symbol string)

	// -----------------------------------------------------------------------------

	// Unsubscribe removes interest in real-time updates for a symbol.
	Unsubscribe(symbol string)
}

// -----------------------------------------------------------------------------

// ICalculationService runs financial calculations (VWAP, P&L, exposure).
type ICalculationService interface {

	// -----------------------------------------------------------------------------

	// Calculate performs the calculation selected by the request payload.
	Calculate(request models.MRequest) (models.MResponse, error)
}

// -----------------------------------------------------------------------------

// IManipulationService filters and transforms in-memory trading datasets.
type IManipulationService interface {

	// -----------------------------------------------------------------------------

	// Manipulate applies a filter operation to the data in the payload.
	Manipulate(request models.MRequest) (models.MResponse, error)

	// -----------------------------------------------------------------------------

	// Transform applies a structural transformation to the data in the
	// payload (e.g. collapsing fills into positions).
	Transform(request models.MRequest) (models.MResponse, error)
}

// -----------------------------------------------------------------------------

// IReportService triggers report generation.
type IReportService interface {

	// -----------------------------------------------------------------------------

	// GenerateReport produces the report described by the report request.
	GenerateReport(request models.MReportRequest) (models.MResponse, error)
}
