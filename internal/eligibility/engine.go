package eligibility

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/ledger"
)

// Limits parametriza o throttle do tier free.
type Limits struct {
	FreeDailyCap  int           // alertas por dia
	FreeSpacing   time.Duration // intervalo mínimo entre alertas
	FreeMaxArbPct float64       // arbs acima disso são só premium
}

// Reason explica por que um alerta foi pulado para um usuário.
type Reason string

const (
	ReasonOK            Reason = ""
	ReasonClassDisabled Reason = "class_disabled"
	ReasonTier          Reason = "tier"
	ReasonSport         Reason = "sport"
	ReasonBelowMinPct   Reason = "below_min_pct"
	ReasonDailyCap      Reason = "daily_cap"
	ReasonSpacing       Reason = "spacing"
	ReasonArbCeiling    Reason = "arb_ceiling"
)

// Engine decide, por usuário, se um alerta classificado deve ser entregue.
type Engine struct {
	log    *zap.Logger
	store  ledger.Store
	limits Limits
}

func NewEngine(log *zap.Logger, store ledger.Store, limits Limits) *Engine {
	return &Engine{log: log, store: store, limits: limits}
}

// Check aplica os filtros na ordem mais barata primeiro. Não muta estado;
// o chamador registra o envio com Commit depois da entrega.
func (e *Engine) Check(u *ledger.User, a *alert.Alert, now time.Time) Reason {
	if !classEnabled(u, a.Class) {
		return ReasonClassDisabled
	}
	// good_ev e middle são features premium
	if u.Tier != ledger.TierPremium && a.Class != alert.ClassArbitrage {
		return ReasonTier
	}
	if !sportAllowed(u, a.League) {
		return ReasonSport
	}
	if a.Pct() < minPct(u, a.Class) {
		return ReasonBelowMinPct
	}
	if u.Tier == ledger.TierFree {
		if a.Class == alert.ClassArbitrage && a.ArbPct > e.limits.FreeMaxArbPct {
			return ReasonArbCeiling
		}
		if e.sentToday(u, now) >= e.limits.FreeDailyCap {
			return ReasonDailyCap
		}
		if u.LastAlertAt != nil && now.Sub(*u.LastAlertAt) < e.limits.FreeSpacing {
			return ReasonSpacing
		}
	}
	return ReasonOK
}

// Commit registra a entrega nos contadores de throttle do usuário.
// Só usuários free são contabilizados.
func (e *Engine) Commit(ctx context.Context, u *ledger.User, now time.Time) {
	if u.Tier != ledger.TierFree {
		return
	}
	sent := e.sentToday(u, now) + 1
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := e.store.UpdateThrottle(ctx, u.ID, sent, today, now); err != nil {
		e.log.Warn("falha ao persistir throttle", zap.String("userId", u.ID), zap.Error(err))
		return
	}
	u.AlertsToday = sent
	u.LastAlertDate = today
	t := now
	u.LastAlertAt = &t
}

// sentToday zera o contador na virada do dia de calendário.
func (e *Engine) sentToday(u *ledger.User, now time.Time) int {
	if u.LastAlertDate.Year() == now.Year() && u.LastAlertDate.YearDay() == now.YearDay() {
		return u.AlertsToday
	}
	return 0
}

func classEnabled(u *ledger.User, c alert.Class) bool {
	switch c {
	case alert.ClassArbitrage:
		return u.EnableArbitrage
	case alert.ClassGoodEV:
		return u.EnableGoodEV
	case alert.ClassMiddle:
		return u.EnableMiddle
	}
	return false
}

func minPct(u *ledger.User, c alert.Class) float64 {
	switch c {
	case alert.ClassArbitrage:
		return u.MinArbPct
	case alert.ClassGoodEV:
		return u.MinEVPct
	case alert.ClassMiddle:
		return u.MinMiddlePct
	}
	return 0
}

// sportAllowed compara a liga do alerta com a allow-list do usuário.
// Lista vazia libera tudo; o match é por prefixo case-insensitive para
// cobrir variantes como "NBA" vs "NBA Preseason".
func sportAllowed(u *ledger.User, league string) bool {
	if len(u.Sports) == 0 {
		return true
	}
	l := strings.ToLower(strings.TrimSpace(league))
	for _, s := range u.Sports {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && strings.HasPrefix(l, s) {
			return true
		}
	}
	return false
}
