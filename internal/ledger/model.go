package ledger

import (
	"time"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
)

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// User é o destinatário de alertas. Criado no primeiro contato; atributos
// só mudam pelas ações de settings do próprio usuário.
type User struct {
	ID       string // id opaco do transporte de chat
	Tier     Tier
	Language string
	Active   bool

	DefaultBudget float64
	RiskPct       float64 // modo risked

	RoundingLevel int // 0, 1, 5, 10
	RoundingMode  oddsmath.RoundMode

	RandomizerEnabled bool
	RandomizerAmounts []int // subconjunto de {1,5,10}
	RandomizerMode    oddsmath.RandomizerMode

	Sports []string // allow-list; vazia = todos os esportes

	EnableArbitrage bool
	EnableGoodEV    bool
	EnableMiddle    bool

	MinArbPct    float64
	MinMiddlePct float64
	MinEVPct     float64

	// contadores de throttle do tier FREE
	AlertsToday   int
	LastAlertDate time.Time // dia de calendário do contador
	LastAlertAt   *time.Time

	// contadores por classe
	ArbitrageBets int
	GoodEVBets    int
	MiddleBets    int

	CreatedAt time.Time
}

type BetStatus string

const (
	StatusPending BetStatus = "pending"
	StatusWon     BetStatus = "won"
	StatusLost    BetStatus = "lost"
	StatusPush    BetStatus = "push"
)

// Terminal diz se o status absorve transições posteriores.
func (s BetStatus) Terminal() bool { return s != StatusPending }

// UserBet é uma linha por clique de "I BET" num alerta.
type UserBet struct {
	ID             string
	UserID         string
	AlertID        string
	Class          alert.Class
	EventHash      string // (classe, event-id) — dedup por usuário
	BetDate        time.Time
	MatchName      string
	League         string
	MatchDate      *time.Time // nil = desconhecida; preenchida pelo questionário
	TotalStake     float64
	ExpectedProfit float64
	ActualProfit   *float64 // nil até a confirmação
	Status         BetStatus
	CreatedAt      time.Time
}

// Ready diz se a bet está madura para o questionário de confirmação:
// match_date conhecida e passada, ou sem match_date e bet de ontem ou antes.
func (b *UserBet) Ready(today time.Time) bool {
	if b.Status != StatusPending {
		return false
	}
	if b.MatchDate != nil {
		return b.MatchDate.Before(dateOnly(today))
	}
	return b.BetDate.Before(dateOnly(today))
}

// DailyStats agrega as bets de um (usuário, dia de calendário).
// total_profit acompanha o expected_profit até a confirmação e depois é
// reconciliado para o actual_profit.
type DailyStats struct {
	UserID      string
	Date        time.Time
	TotalBets   int
	TotalStaked float64
	TotalProfit float64
	Confirmed   bool
}

// EventHash é a convenção única de dedup por usuário: (classe, event-id).
func EventHash(class alert.Class, eventID string) string {
	return string(class) + "_" + eventID
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
