// Package audit is a best-effort, append-only audit trail over MySQL.
// It is never read back by the engine; the registry and ledger remain the
// source of truth for live state, and insert failures are logged rather
// than propagated.
package audit

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/models"
)

type Log struct {
	db  *sql.DB
	log *zap.Logger
}

func Open(dsn string, log *zap.Logger) (*Log, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return &Log{db: db, log: log}, nil
}

func (l *Log) Close() error { return l.db.Close() }

// EnsureSchema creates the append-only audit tables if they do not
// already exist.
func (l *Log) EnsureSchema() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS orders_audit (
			seq          BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id     BIGINT UNSIGNED NOT NULL,
			user_id      BIGINT UNSIGNED NOT NULL,
			symbol       VARCHAR(32) NOT NULL,
			side         VARCHAR(8) NOT NULL,
			order_type   VARCHAR(8) NOT NULL,
			time_in_force VARCHAR(8) NOT NULL,
			price        BIGINT NOT NULL,
			quantity     BIGINT UNSIGNED NOT NULL,
			filled       BIGINT UNSIGNED NOT NULL,
			status       VARCHAR(20) NOT NULL,
			recorded_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades_audit (
			seq           BIGINT AUTO_INCREMENT PRIMARY KEY,
			trade_id      BIGINT UNSIGNED NOT NULL,
			buy_order_id  BIGINT UNSIGNED NOT NULL,
			sell_order_id BIGINT UNSIGNED NOT NULL,
			buy_user_id   BIGINT UNSIGNED NOT NULL,
			sell_user_id  BIGINT UNSIGNED NOT NULL,
			symbol        VARCHAR(32) NOT NULL,
			price         BIGINT NOT NULL,
			quantity      BIGINT UNSIGNED NOT NULL,
			recorded_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

// OnOrderUpdate appends a row recording the order's state at this event.
// It implements engine.EventSink alongside the Kafka and WebSocket sinks.
func (l *Log) OnOrderUpdate(o models.Order) {
	_, err := l.db.Exec(`
		INSERT INTO orders_audit
			(order_id, user_id, symbol, side, order_type, time_in_force, price, quantity, filled, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Symbol, o.Side, o.Type, o.TimeInForce, o.Price, o.Quantity, o.Filled, o.Status)
	if err != nil {
		l.log.Error("audit: order insert failed", zap.Uint64("order_id", o.ID), zap.Error(err))
	}
}

func (l *Log) OnTrade(t models.Trade) {
	_, err := l.db.Exec(`
		INSERT INTO trades_audit
			(trade_id, buy_order_id, sell_order_id, buy_user_id, sell_user_id, symbol, price, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.BuyOrderID, t.SellOrderID, t.BuyUserID, t.SellUserID, t.Symbol, t.Price, t.Quantity)
	if err != nil {
		l.log.Error("audit: trade insert failed", zap.Uint64("trade_id", t.ID), zap.Error(err))
	}
}

func (l *Log) OnTick(models.MarketSnapshot)     {}
func (l *Log) OnError(models.ErrorCode, string) {}
