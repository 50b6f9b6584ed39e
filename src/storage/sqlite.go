package storage

import (
	"database/sql"
	"fmt"
	"time"

	"trading-server/src/helpers"
	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"

	_ "modernc.org/sqlite"
)

// SQLite batch constants
const (
	sqliteMaxVars   = 32000
	paramsPerRow    = 8
	sqliteBatchSize = sqliteMaxVars / paramsPerRow // 4000 rows
)

var _ interfaces.ITradeStore = (*SQLiteTradeStore)(nil)

// -----------------------------------------------------------------------------

// SQLiteTradeStore persists the trade log in an embedded SQLite database.
// trade_date is derived from the execution timestamp at insert time so that
// date-range report queries stay index-friendly.
type SQLiteTradeStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteTradeStore(cfg *models.MConfig, log *logger.Logger) *SQLiteTradeStore {
	return &SQLiteTradeStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteTradeStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return dbError("failed to open sqlite database "+dsn, err)
	}
	if err := db.Ping(); err != nil {
		return dbError("failed to ping sqlite database "+dsn, err)
	}
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteTradeStore) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS trades (
			trade_id INTEGER PRIMARY KEY,
			order_id INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			price REAL NOT NULL,
			quantity INTEGER NOT NULL,
			side INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			trade_date TEXT NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return dbError("failed to create trades table", err)
	}

	query = `CREATE INDEX IF NOT EXISTS idx_trades_date ON trades (trade_date, timestamp);`
	if _, err := d.DB.Exec(query); err != nil {
		return dbError("failed to create trades date index", err)
	}

	d.Logger.Info("SQLiteTradeStore initialized (%s)", d.Config.Storage.DBPath)
	return nil
}

// -----------------------------------------------------------------------------

// SaveTrades inserts trades in batches inside a single transaction. A trade
// id that already exists is skipped, so replayed batches are harmless.
func (d *SQLiteTradeStore) SaveTrades(trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return dbError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO trades (trade_id, order_id, symbol, price, quantity, side, timestamp, trade_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (trade_id) DO NOTHING
	`)
	if err != nil {
		return dbError("failed to prepare trade insert", err)
	}
	defer stmt.Close()

	for start := 0; start < len(trades); start += sqliteBatchSize {
		end := start + sqliteBatchSize
		if end > len(trades) {
			end = len(trades)
		}
		for _, t := range trades[start:end] {
			_, err := stmt.Exec(
				int64(t.TradeID), int64(t.OrderID), models.UnpackSymbol(t.Symbol),
				t.Price, int64(t.Quantity), t.Side, t.Timestamp, tradeDate(t.Timestamp),
			)
			if err != nil {
				return dbError(fmt.Sprintf("failed to insert trade %d", t.TradeID), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError("failed to commit trade batch", err)
	}
	d.Logger.Debug("saved %d trades", len(trades))
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteTradeStore) TradesBetween(dateFrom, dateTo string) ([]models.Trade, error) {
	rows, err := d.DB.Query(`
		SELECT trade_id, order_id, symbol, price, quantity, side, timestamp
		FROM trades
		WHERE trade_date BETWEEN ? AND ?
		ORDER BY timestamp
	`, dateFrom, dateTo)
	if err != nil {
		return nil, dbError("trade range query failed", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteTradeStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Shared helpers
// -----------------------------------------------------------------------------

// tradeDate converts a Unix microsecond timestamp to its UTC calendar date.
func tradeDate(timestampMicros int64) string {
	return time.UnixMicro(timestampMicros).UTC().Format("2006-01-02")
}

// -----------------------------------------------------------------------------

func scanTrades(rows *sql.Rows) ([]models.Trade, error) {
	var trades []models.Trade
	for rows.Next() {
		var (
			tradeID, orderID, quantity, timestamp int64
			symbol                                string
			price                                 float64
			side                                  uint8
		)
		if err := rows.Scan(&tradeID, &orderID, &symbol, &price, &quantity, &side, &timestamp); err != nil {
			return nil, dbError("failed to scan trade row", err)
		}
		trades = append(trades, models.Trade{
			TradeID:   uint64(tradeID),
			OrderID:   uint64(orderID),
			Symbol:    models.PackSymbol(symbol),
			Price:     price,
			Quantity:  uint64(quantity),
			Side:      side,
			Timestamp: timestamp,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("trade row iteration failed", err)
	}
	return trades, nil
}

// -----------------------------------------------------------------------------

func dbError(message string, cause error) error {
	return &helpers.DatabaseError{TradingServerError: helpers.TradingServerError{
		Message: message,
		Cause:   cause,
	}}
}
