package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
)

var (
	ErrNotFound   = errors.New("registro não encontrado")
	ErrNotPending = errors.New("bet já confirmada")
)

// ClickParams descreve um "I BET" vindo do callback do alerta.
type ClickParams struct {
	UserID         string
	AlertID        string
	Class          alert.Class
	EventHash      string
	BetDate        time.Time
	MatchName      string
	League         string
	MatchDate      *time.Time
	TotalStake     float64
	ExpectedProfit float64
}

// ClickResult carrega o id da bet e se ela já existia (clique repetido
// no mesmo evento/classe).
type ClickResult struct {
	BetID   string
	Already bool
}

// Store é o ledger persistente: alertas recebidos, usuários e suas bets.
type Store interface {
	InsertAlert(ctx context.Context, a *alert.Alert) error
	GetAlert(ctx context.Context, id string) (*alert.Alert, error)

	GetOrCreateUser(ctx context.Context, id string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListActiveUsers(ctx context.Context) ([]*User, error)
	SaveUserSettings(ctx context.Context, u *User) error
	UpdateThrottle(ctx context.Context, userID string, alertsToday int, lastAlertDate time.Time, lastAlertAt time.Time) error
	IncrementClassCounter(ctx context.Context, userID string, class alert.Class) error
	DeactivateUser(ctx context.Context, userID string) error

	// RecordClick insere a bet e atualiza DailyStats na mesma transação.
	// Repetido (user_id, event_hash, classe) devolve a bet original com
	// Already=true, sem tocar nos agregados.
	RecordClick(ctx context.Context, p ClickParams) (ClickResult, error)

	// Undo remove uma bet pending e desfaz os agregados do dia.
	Undo(ctx context.Context, userID, betID string) error

	// Resolve fecha a bet e reconcilia DailyStats. Status terminal
	// absorve: segunda resolução devolve a bet como está, sem mutação.
	Resolve(ctx context.Context, betID string, status BetStatus, actualProfit float64) (*UserBet, error)

	// PostponeBet grava (ou limpa) a match_date de uma bet pending.
	PostponeBet(ctx context.Context, betID string, matchDate *time.Time) error

	GetBet(ctx context.Context, betID string) (*UserBet, error)
	ReadyCount(ctx context.Context, userID string, today time.Time) (int, error)
	ListReadyBets(ctx context.Context, userID string, today time.Time) ([]*UserBet, error)
	GetDailyStats(ctx context.Context, userID string, date time.Time) (*DailyStats, error)
}

// NewUser materializa um usuário com os defaults de primeiro contato.
func NewUser(id string, now time.Time) *User {
	return &User{
		ID:              id,
		Tier:            TierFree,
		Language:        "en",
		Active:          true,
		DefaultBudget:   500,
		RiskPct:         2.5,
		RoundingLevel:   0,
		RoundingMode:    oddsmath.RoundNearest,
		EnableArbitrage: true,
		MinArbPct:       1.0,
		MinMiddlePct:    0.0,
		MinEVPct:        0.0,
		LastAlertDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		CreatedAt:       now,
	}
}
