package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"

	_ "github.com/lib/pq"
)

var _ interfaces.ITradeStore = (*PostgresTradeStore)(nil)

// -----------------------------------------------------------------------------

// PostgresTradeStore persists the trade log in PostgreSQL. Each deployment
// gets its own schema, named after the executable, so several instances can
// share one database without clashing.
type PostgresTradeStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresTradeStore(cfg *models.MConfig, log *logger.Logger) (*PostgresTradeStore, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresTradeStore{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresTradeStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return dbError("failed to open postgres connection", err)
	}
	if err := db.Ping(); err != nil {
		return dbError("failed to ping postgres", err)
	}
	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return dbError("failed to create schema "+d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."trades" (
			trade_id BIGINT PRIMARY KEY,
			order_id BIGINT NOT NULL,
			symbol TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			quantity BIGINT NOT NULL,
			side SMALLINT NOT NULL,
			timestamp BIGINT NOT NULL,
			trade_date DATE NOT NULL
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return dbError("failed to create trades table", err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_trades_date ON "%s"."trades" (trade_date, timestamp);`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return dbError("failed to create trades date index", err)
	}

	d.Logger.Info("PostgresTradeStore initialized (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

// SaveTrades inserts trades in a single transaction. Duplicate trade ids are
// skipped, so replayed batches are harmless.
func (d *PostgresTradeStore) SaveTrades(trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return dbError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO "%s"."trades" (trade_id, order_id, symbol, price, quantity, side, timestamp, trade_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (trade_id) DO NOTHING
	`, d.Schema))
	if err != nil {
		return dbError("failed to prepare trade insert", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		_, err := stmt.Exec(
			int64(t.TradeID), int64(t.OrderID), models.UnpackSymbol(t.Symbol),
			t.Price, int64(t.Quantity), int16(t.Side), t.Timestamp, tradeDate(t.Timestamp),
		)
		if err != nil {
			return dbError(fmt.Sprintf("failed to insert trade %d", t.TradeID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError("failed to commit trade batch", err)
	}
	d.Logger.Debug("saved %d trades", len(trades))
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresTradeStore) TradesBetween(dateFrom, dateTo string) ([]models.Trade, error) {
	rows, err := d.DB.Query(fmt.Sprintf(`
		SELECT trade_id, order_id, symbol, price, quantity, side, timestamp
		FROM "%s"."trades"
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY timestamp
	`, d.Schema), dateFrom, dateTo)
	if err != nil {
		return nil, dbError("trade range query failed", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresTradeStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
