package interfaces

import "trading-server/src/models"

// -----------------------------------------------------------------------------
// ITradeStore defines the contract for trade persistence.
// -----------------------------------------------------------------------------

type ITradeStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTrades inserts a batch of trade records.
	SaveTrades(trades []models.Trade) error

	// -----------------------------------------------------------------------------

	// TradesBetween returns all trades whose trade date falls inside the
	// inclusive [dateFrom, dateTo] range (ISO 8601 dates), ordered by
	// execution timestamp.
	TradesBetween(dateFrom, dateTo string) ([]models.Trade, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
