package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/arb-alert-core/internal/alert"
)

// PostgresStore implementa Store sobre Postgres com SQL direto.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertAlert(ctx context.Context, a *alert.Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("serializar alerta: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, class, event_id, fingerprint, payload, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Class, a.EventID, a.Fingerprint, payload, a.ReceivedAt)
	if err != nil {
		return fmt.Errorf("inserir alerta: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAlert(ctx context.Context, id string) (*alert.Alert, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM alerts WHERE id = $1`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("buscar alerta: %w", err)
	}
	var a alert.Alert
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("deserializar alerta: %w", err)
	}
	return &a, nil
}

const userColumns = `id, tier, language, active, default_budget, risk_pct,
	rounding_level, rounding_mode, randomizer_enabled, randomizer_amounts,
	randomizer_mode, sports, enable_arbitrage, enable_good_ev, enable_middle,
	min_arb_pct, min_middle_pct, min_ev_pct, alerts_today, last_alert_date,
	last_alert_at, arbitrage_bets, good_ev_bets, middle_bets, created_at`

func (s *PostgresStore) GetOrCreateUser(ctx context.Context, id string) (*User, error) {
	u, err := s.GetUser(ctx, id)
	if err == nil {
		return u, nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	u = NewUser(id, time.Now())
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, tier, language, active, default_budget, risk_pct,
		        rounding_level, rounding_mode, min_arb_pct, last_alert_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING`,
		u.ID, u.Tier, u.Language, u.Active, u.DefaultBudget, u.RiskPct,
		u.RoundingLevel, u.RoundingMode, u.MinArbPct, u.LastAlertDate, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("criar usuário: %w", err)
	}
	return s.GetUser(ctx, id)
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) ListActiveUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE active = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("listar usuários: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveUserSettings(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET tier = $2, language = $3, default_budget = $4,
		        risk_pct = $5, rounding_level = $6, rounding_mode = $7,
		        randomizer_enabled = $8, randomizer_amounts = $9, randomizer_mode = $10,
		        sports = $11, enable_arbitrage = $12, enable_good_ev = $13,
		        enable_middle = $14, min_arb_pct = $15, min_middle_pct = $16,
		        min_ev_pct = $17
		 WHERE id = $1`,
		u.ID, u.Tier, u.Language, u.DefaultBudget,
		u.RiskPct, u.RoundingLevel, u.RoundingMode,
		u.RandomizerEnabled, joinInts(u.RandomizerAmounts), u.RandomizerMode,
		strings.Join(u.Sports, ","), u.EnableArbitrage, u.EnableGoodEV,
		u.EnableMiddle, u.MinArbPct, u.MinMiddlePct, u.MinEVPct)
	if err != nil {
		return fmt.Errorf("salvar settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateThrottle(ctx context.Context, userID string, alertsToday int, lastAlertDate, lastAlertAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET alerts_today = $2, last_alert_date = $3, last_alert_at = $4 WHERE id = $1`,
		userID, alertsToday, lastAlertDate, lastAlertAt)
	if err != nil {
		return fmt.Errorf("atualizar throttle: %w", err)
	}
	return nil
}

func (s *PostgresStore) IncrementClassCounter(ctx context.Context, userID string, class alert.Class) error {
	var col string
	switch class {
	case alert.ClassArbitrage:
		col = "arbitrage_bets"
	case alert.ClassGoodEV:
		col = "good_ev_bets"
	case alert.ClassMiddle:
		col = "middle_bets"
	default:
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+col+` = `+col+` + 1 WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("incrementar contador: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeactivateUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET active = FALSE WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("desativar usuário: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordClick(ctx context.Context, p ClickParams) (ClickResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ClickResult{}, fmt.Errorf("abrir transação: %w", err)
	}
	defer tx.Rollback()

	betID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_bets (id, user_id, alert_id, class, event_hash, bet_date,
		        match_name, league, match_date, total_stake, expected_profit, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending', now())`,
		betID, p.UserID, p.AlertID, p.Class, p.EventHash, dateOnly(p.BetDate),
		p.MatchName, p.League, nullDate(p.MatchDate), p.TotalStake, p.ExpectedProfit)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			// clique repetido no mesmo evento/classe: devolve a bet original
			var existing string
			err = s.db.QueryRowContext(ctx,
				`SELECT id FROM user_bets WHERE user_id = $1 AND event_hash = $2 AND class = $3`,
				p.UserID, p.EventHash, p.Class).Scan(&existing)
			if err != nil {
				return ClickResult{}, fmt.Errorf("buscar bet existente: %w", err)
			}
			return ClickResult{BetID: existing, Already: true}, nil
		}
		return ClickResult{}, fmt.Errorf("inserir bet: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO daily_stats (user_id, date, total_bets, total_staked, total_profit, confirmed)
		 VALUES ($1, $2, 1, $3, $4, FALSE)
		 ON CONFLICT (user_id, date) DO UPDATE SET
		        total_bets   = daily_stats.total_bets + 1,
		        total_staked = daily_stats.total_staked + EXCLUDED.total_staked,
		        total_profit = daily_stats.total_profit + EXCLUDED.total_profit,
		        confirmed    = FALSE`,
		p.UserID, dateOnly(p.BetDate), p.TotalStake, p.ExpectedProfit)
	if err != nil {
		return ClickResult{}, fmt.Errorf("atualizar daily_stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ClickResult{}, fmt.Errorf("commitar clique: %w", err)
	}
	return ClickResult{BetID: betID}, nil
}

func (s *PostgresStore) Undo(ctx context.Context, userID, betID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("abrir transação: %w", err)
	}
	defer tx.Rollback()

	b, err := lockBet(ctx, tx, betID)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrNotFound
	}
	if b.Status != StatusPending {
		return ErrNotPending
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_bets WHERE id = $1`, betID); err != nil {
		return fmt.Errorf("remover bet: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE daily_stats SET total_bets = total_bets - 1,
		        total_staked = total_staked - $3, total_profit = total_profit - $4
		 WHERE user_id = $1 AND date = $2`,
		b.UserID, b.BetDate, b.TotalStake, b.ExpectedProfit)
	if err != nil {
		return fmt.Errorf("reverter daily_stats: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM daily_stats WHERE user_id = $1 AND date = $2 AND total_bets <= 0`,
		b.UserID, b.BetDate)
	if err != nil {
		return fmt.Errorf("limpar daily_stats: %w", err)
	}
	return tx.Commit()
}

func (s *PostgresStore) Resolve(ctx context.Context, betID string, status BetStatus, actualProfit float64) (*UserBet, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("abrir transação: %w", err)
	}
	defer tx.Rollback()

	b, err := lockBet(ctx, tx, betID)
	if err != nil {
		return nil, err
	}
	if b.Status.Terminal() {
		// status terminal absorve: resolução repetida não muta nada
		return b, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE user_bets SET status = $2, actual_profit = $3 WHERE id = $1`,
		betID, status, actualProfit)
	if err != nil {
		return nil, fmt.Errorf("resolver bet: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE daily_stats SET total_profit = total_profit - $3 + $4
		 WHERE user_id = $1 AND date = $2`,
		b.UserID, b.BetDate, b.ExpectedProfit, actualProfit)
	if err != nil {
		return nil, fmt.Errorf("reconciliar daily_stats: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE daily_stats SET confirmed = TRUE
		 WHERE user_id = $1 AND date = $2 AND NOT EXISTS (
		        SELECT 1 FROM user_bets
		        WHERE user_id = $1 AND bet_date = $2 AND status = 'pending' AND id <> $3)`,
		b.UserID, b.BetDate, betID)
	if err != nil {
		return nil, fmt.Errorf("fechar daily_stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commitar resolução: %w", err)
	}
	b.Status = status
	b.ActualProfit = &actualProfit
	return b, nil
}

func (s *PostgresStore) PostponeBet(ctx context.Context, betID string, matchDate *time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_bets SET match_date = $2 WHERE id = $1 AND status = 'pending'`,
		betID, nullDate(matchDate))
	if err != nil {
		return fmt.Errorf("adiar bet: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const betColumns = `id, user_id, alert_id, class, event_hash, bet_date, match_name,
	league, match_date, total_stake, expected_profit, actual_profit, status, created_at`

func (s *PostgresStore) GetBet(ctx context.Context, betID string) (*UserBet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+betColumns+` FROM user_bets WHERE id = $1`, betID)
	return scanBet(row)
}

// readyWhere seleciona bets maduras: match_date passada, ou sem match_date
// e feitas antes de hoje.
const readyWhere = `user_id = $1 AND status = 'pending'
	AND (match_date < $2 OR (match_date IS NULL AND bet_date < $2))`

func (s *PostgresStore) ReadyCount(ctx context.Context, userID string, today time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_bets WHERE `+readyWhere,
		userID, dateOnly(today)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("contar bets maduras: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListReadyBets(ctx context.Context, userID string, today time.Time) ([]*UserBet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+betColumns+` FROM user_bets WHERE `+readyWhere+` ORDER BY created_at`,
		userID, dateOnly(today))
	if err != nil {
		return nil, fmt.Errorf("listar bets maduras: %w", err)
	}
	defer rows.Close()

	var out []*UserBet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetDailyStats(ctx context.Context, userID string, date time.Time) (*DailyStats, error) {
	d := &DailyStats{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT date, total_bets, total_staked, total_profit, confirmed
		 FROM daily_stats WHERE user_id = $1 AND date = $2`,
		userID, dateOnly(date)).Scan(&d.Date, &d.TotalBets, &d.TotalStaked, &d.TotalProfit, &d.Confirmed)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("buscar daily_stats: %w", err)
	}
	return d, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u           User
		amounts     string
		sports      string
		lastAlertAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Tier, &u.Language, &u.Active, &u.DefaultBudget, &u.RiskPct,
		&u.RoundingLevel, &u.RoundingMode, &u.RandomizerEnabled, &amounts,
		&u.RandomizerMode, &sports, &u.EnableArbitrage, &u.EnableGoodEV, &u.EnableMiddle,
		&u.MinArbPct, &u.MinMiddlePct, &u.MinEVPct, &u.AlertsToday, &u.LastAlertDate,
		&lastAlertAt, &u.ArbitrageBets, &u.GoodEVBets, &u.MiddleBets, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ler usuário: %w", err)
	}
	u.RandomizerAmounts = splitInts(amounts)
	if sports != "" {
		u.Sports = strings.Split(sports, ",")
	}
	if lastAlertAt.Valid {
		t := lastAlertAt.Time
		u.LastAlertAt = &t
	}
	return &u, nil
}

func scanBet(row rowScanner) (*UserBet, error) {
	var (
		b            UserBet
		matchDate    sql.NullTime
		actualProfit sql.NullFloat64
	)
	err := row.Scan(&b.ID, &b.UserID, &b.AlertID, &b.Class, &b.EventHash, &b.BetDate,
		&b.MatchName, &b.League, &matchDate, &b.TotalStake, &b.ExpectedProfit,
		&actualProfit, &b.Status, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ler bet: %w", err)
	}
	if matchDate.Valid {
		t := matchDate.Time
		b.MatchDate = &t
	}
	if actualProfit.Valid {
		v := actualProfit.Float64
		b.ActualProfit = &v
	}
	return &b, nil
}

func lockBet(ctx context.Context, tx *sql.Tx, betID string) (*UserBet, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+betColumns+` FROM user_bets WHERE id = $1 FOR UPDATE`, betID)
	return scanBet(row)
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dateOnly(*t)
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) []int {
	if s == "" {
		return nil
	}
	var out []int
	for _, p := range strings.Split(s, ",") {
		if v, err := strconv.Atoi(p); err == nil {
			out = append(out, v)
		}
	}
	return out
}
