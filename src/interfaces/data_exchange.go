package interfaces

import "trading-server/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing data with external
// observers (the monitor server's WebSocket hub).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// -----------------------------------------------------------------------------

	// Broadcast pushes a market data update to all connected observers.
	Broadcast(update models.MarketData)

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
