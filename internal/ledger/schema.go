package ledger

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS alerts (
		id UUID PRIMARY KEY,
		class TEXT NOT NULL,
		event_id TEXT NOT NULL DEFAULT '',
		fingerprint TEXT NOT NULL,
		payload JSONB NOT NULL,
		received_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		tier TEXT NOT NULL DEFAULT 'free',
		language TEXT NOT NULL DEFAULT 'en',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		default_budget DOUBLE PRECISION NOT NULL DEFAULT 500,
		risk_pct DOUBLE PRECISION NOT NULL DEFAULT 2.5,
		rounding_level INT NOT NULL DEFAULT 0,
		rounding_mode TEXT NOT NULL DEFAULT 'nearest',
		randomizer_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		randomizer_amounts TEXT NOT NULL DEFAULT '',
		randomizer_mode TEXT NOT NULL DEFAULT 'random',
		sports TEXT NOT NULL DEFAULT '',
		enable_arbitrage BOOLEAN NOT NULL DEFAULT TRUE,
		enable_good_ev BOOLEAN NOT NULL DEFAULT FALSE,
		enable_middle BOOLEAN NOT NULL DEFAULT FALSE,
		min_arb_pct DOUBLE PRECISION NOT NULL DEFAULT 1.0,
		min_middle_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		min_ev_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		alerts_today INT NOT NULL DEFAULT 0,
		last_alert_date DATE NOT NULL DEFAULT CURRENT_DATE,
		last_alert_at TIMESTAMPTZ,
		arbitrage_bets INT NOT NULL DEFAULT 0,
		good_ev_bets INT NOT NULL DEFAULT 0,
		middle_bets INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_bets (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		alert_id UUID NOT NULL,
		class TEXT NOT NULL,
		event_hash TEXT NOT NULL,
		bet_date DATE NOT NULL,
		match_name TEXT NOT NULL,
		league TEXT NOT NULL DEFAULT '',
		match_date DATE,
		total_stake DOUBLE PRECISION NOT NULL,
		expected_profit DOUBLE PRECISION NOT NULL,
		actual_profit DOUBLE PRECISION,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, event_hash, class)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_stats (
		user_id TEXT NOT NULL,
		date DATE NOT NULL,
		total_bets INT NOT NULL DEFAULT 0,
		total_staked DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_profit DOUBLE PRECISION NOT NULL DEFAULT 0,
		confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_bets_pending
		ON user_bets (user_id, status, match_date, bet_date)`,
}

// EnsureSchema cria as tabelas na subida do serviço. Idempotente.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("aplicar schema: %w", err)
		}
	}
	return nil
}
