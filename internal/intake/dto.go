package intake

import (
	"time"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
)

// Envelope cru dos produtores de alertas. A classe vem da rota, não do corpo.
type AlertEnvelope struct {
	EventID      string       `json:"event_id,omitempty"`
	League       string       `json:"league"`
	Match        string       `json:"match"`
	Market       string       `json:"market,omitempty"`
	CommenceTime string       `json:"commence_time,omitempty"` // RFC3339
	Outcomes     []OutcomeDTO `json:"outcomes,omitempty"`
	ArbPct       float64      `json:"arb_percentage,omitempty"`
	EVPct        float64      `json:"ev_percent,omitempty"`
	SideA        *SideDTO     `json:"side_a,omitempty"`
	SideB        *SideDTO     `json:"side_b,omitempty"`
}

type OutcomeDTO struct {
	Casino    string  `json:"casino"`
	Selection string  `json:"selection"`
	Odds      int     `json:"odds"`
	Stake     float64 `json:"stake,omitempty"`
}

type SideDTO struct {
	Bookmaker string  `json:"bookmaker"`
	Casino    string  `json:"casino,omitempty"` // nome antigo do campo, ainda aceito
	Selection string  `json:"selection"`
	Line      float64 `json:"line"`
	Odds      int     `json:"odds"`
	Market    string  `json:"market,omitempty"`
}

// ToAlert materializa o domínio a partir do envelope; commence_time
// inválido é ignorado (o questionário pergunta a data depois).
func (e *AlertEnvelope) ToAlert(class alert.Class) *alert.Alert {
	a := &alert.Alert{
		EventID: e.EventID,
		Class:   class,
		League:  e.League,
		Match:   e.Match,
		Market:  e.Market,
		ArbPct:  e.ArbPct,
		EVPct:   e.EVPct,
	}
	if e.CommenceTime != "" {
		if t, err := time.Parse(time.RFC3339, e.CommenceTime); err == nil {
			a.CommenceAt = &t
		}
	}
	for _, o := range e.Outcomes {
		a.Outcomes = append(a.Outcomes, alert.Outcome{
			Casino: o.Casino, Selection: o.Selection, Odds: o.Odds, Stake: o.Stake,
		})
	}
	a.SideA = e.SideA.toSide()
	a.SideB = e.SideB.toSide()
	return a
}

func (s *SideDTO) toSide() *oddsmath.MiddleSide {
	if s == nil {
		return nil
	}
	book := s.Bookmaker
	if book == "" {
		book = s.Casino
	}
	return &oddsmath.MiddleSide{
		Bookmaker: book,
		Selection: s.Selection,
		Line:      s.Line,
		Odds:      s.Odds,
		Market:    s.Market,
	}
}
