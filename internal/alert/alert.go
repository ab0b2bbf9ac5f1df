package alert

import (
	"time"

	"github.com/radieske/arb-alert-core/internal/oddsmath"
)

// Classe da oportunidade, como chega do produtor upstream.
type Class string

const (
	ClassArbitrage Class = "arbitrage"
	ClassMiddle    Class = "middle"
	ClassGoodEV    Class = "good_ev"
)

func (c Class) Valid() bool {
	switch c {
	case ClassArbitrage, ClassMiddle, ClassGoodEV:
		return true
	}
	return false
}

// Outcome é um lado da oportunidade com bookmaker já normalizado.
type Outcome struct {
	Casino    string  `json:"casino"`
	Selection string  `json:"selection"`
	Odds      int     `json:"odds"` // americana
	Stake     float64 `json:"stake,omitempty"`
}

// Alert é uma oportunidade aceita: classificada, com fingerprint e pronta
// para o fan-out. Append-only; read-only depois do intake.
type Alert struct {
	ID          string               `json:"id"`      // uuid interno (chave do drop_event)
	EventID     string               `json:"eventId"` // id opaco do produtor
	Class       Class                `json:"class"`
	League      string               `json:"league"`
	Match       string               `json:"match"` // "Team A vs Team B"
	Market      string               `json:"market"`
	CommenceAt  *time.Time           `json:"commenceAt,omitempty"`
	Outcomes    []Outcome            `json:"outcomes"`
	ArbPct      float64              `json:"arbPct,omitempty"` // classe arbitrage
	EVPct       float64              `json:"evPct,omitempty"`  // classe good_ev
	SideA       *oddsmath.MiddleSide `json:"sideA,omitempty"`
	SideB       *oddsmath.MiddleSide `json:"sideB,omitempty"`
	MiddleInfo  *MiddleInfo          `json:"middleInfo,omitempty"`
	Fingerprint string               `json:"fingerprint"`
	ReceivedAt  time.Time            `json:"receivedAt"`
}

// MiddleInfo é a classificação anexada no intake. A classificação safe/risky
// independe do budget (os profits escalam linearmente), então é calculada
// uma vez com budget de referência.
type MiddleInfo struct {
	Type MiddleType `json:"type"`
	Gap  float64    `json:"gap"`
	Prob float64    `json:"prob"`
}

type MiddleType = oddsmath.MiddleType

// Pct devolve a porcentagem relevante da classe (arb-% ou EV-%).
func (a *Alert) Pct() float64 {
	if a.Class == ClassGoodEV {
		return a.EVPct
	}
	return a.ArbPct
}
