package dispatch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
	"github.com/radieske/arb-alert-core/pkg/contracts/callback"
	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

func baseUser() *ledger.User {
	u := ledger.NewUser("u1", time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC))
	u.DefaultBudget = 750
	return u
}

func arbAlert() *alert.Alert {
	return &alert.Alert{
		ID:     "al-arb",
		Class:  alert.ClassArbitrage,
		League: "NBA",
		Match:  "Lakers vs Celtics",
		Market: "Moneyline",
		ArbPct: 3.43,
		Outcomes: []alert.Outcome{
			{Casino: "bet365", Selection: "Lakers", Odds: 110},
			{Casino: "Pinnacle", Selection: "Celtics", Odds: 115},
		},
	}
}

func TestRenderArbitrage(t *testing.T) {
	a := arbAlert()
	u := baseUser()

	r, err := render(a, u, oddsmath.DefaultProbTable())
	require.NoError(t, err)

	// split de retorno igual: os dois lados pagam o mesmo
	decA, _ := oddsmath.AmericanToDecimal(110)
	decB, _ := oddsmath.AmericanToDecimal(115)
	assert.InDelta(t, r.TotalStake*decA*decB/(decA+decB)-r.TotalStake, r.ExpectedProfit, 0.05)
	assert.Greater(t, r.ExpectedProfit, 0.0)

	assert.Contains(t, r.Msg.Headline, "Arbitrage 3.43%")
	assert.Contains(t, r.Msg.Headline, "Lakers vs Celtics")
	require.Len(t, r.Msg.Lines, 4, "league, market e duas pernas")

	var ibet, links int
	for _, act := range r.Msg.Actions {
		switch act.Kind {
		case messages.ActionCallback:
			ibet++
			tok, perr := callback.Parse(act.Token)
			require.NoError(t, perr)
			assert.Equal(t, callback.KindIBet, tok.Kind)
			assert.Equal(t, "arbitrage", tok.Class)
			assert.Equal(t, a.ID, tok.ID)
			assert.InDelta(t, r.TotalStake, tok.Stake, 0.01)
		case messages.ActionLink:
			links++
			assert.True(t, strings.HasPrefix(act.Href, "https://"))
		}
	}
	assert.Equal(t, 1, ibet)
	assert.Equal(t, 2, links, "um link por bookmaker")
}

// margem fina + arredondamento agressivo: o alerta não deve sair
func TestRenderArbitrageRoundedAway(t *testing.T) {
	a := arbAlert()
	a.ArbPct = 0.97
	a.Outcomes = []alert.Outcome{
		{Casino: "bet365", Selection: "Over", Odds: 100},
		{Casino: "Pinnacle", Selection: "Under", Odds: 102},
	}
	u := baseUser()
	u.RoundingLevel = 5 // múltiplos de $5
	u.RoundingMode = oddsmath.RoundNearest

	_, err := render(a, u, oddsmath.DefaultProbTable())
	assert.ErrorIs(t, err, oddsmath.ErrRoundedAway)
}

func TestRenderMiddle(t *testing.T) {
	a := &alert.Alert{
		ID:    "al-mid",
		Class: alert.ClassMiddle,
		Match: "Chiefs vs Bills",
		SideA: &oddsmath.MiddleSide{Bookmaker: "bet365", Selection: "Over 44.5", Line: 44.5, Odds: -105, Market: "Total Points"},
		SideB: &oddsmath.MiddleSide{Bookmaker: "Pinnacle", Selection: "Under 47.5", Line: 47.5, Odds: 120, Market: "Total Points"},
	}
	u := baseUser()

	r, err := render(a, u, oddsmath.DefaultProbTable())
	require.NoError(t, err)
	assert.Contains(t, r.Msg.Headline, "Middle")
	assert.InDelta(t, 750, r.TotalStake, 0.5)
	assert.Contains(t, r.Msg.Footer, "Middle hits")
}

// middle arriscado carrega a linha alternativa em modo risked, com a perda
// do lado desfavorecido travada no risk_pct do perfil
func TestRenderMiddleRiskyShowsRiskedSplit(t *testing.T) {
	a := &alert.Alert{
		ID:    "al-risky",
		Class: alert.ClassMiddle,
		Match: "Chiefs vs Bills",
		SideA: &oddsmath.MiddleSide{Bookmaker: "bet365", Selection: "Over 44.5", Line: 44.5, Odds: -130, Market: "Total Points"},
		SideB: &oddsmath.MiddleSide{Bookmaker: "Pinnacle", Selection: "Under 47.5", Line: 47.5, Odds: -120, Market: "Total Points"},
	}
	u := baseUser()
	u.RiskPct = 5

	r, err := render(a, u, oddsmath.DefaultProbTable())
	require.NoError(t, err)

	var risked string
	for _, line := range r.Msg.Lines {
		if line.Label == "Risked" {
			risked = line.Value
		}
	}
	require.NotEmpty(t, risked, "middle arriscado sem a linha risked")
	assert.Contains(t, risked, "risks $37.50") // 5% de 750
	assert.Contains(t, risked, "(5.0%)")
}

// middle seguro não ganha linha risked: os dois cenários simples já são >= 0
func TestRenderMiddleSafeHasNoRiskedSplit(t *testing.T) {
	a := &alert.Alert{
		ID:    "al-mid2",
		Class: alert.ClassMiddle,
		Match: "Chiefs vs Bills",
		SideA: &oddsmath.MiddleSide{Bookmaker: "bet365", Selection: "Over 44.5", Line: 44.5, Odds: -105, Market: "Total Points"},
		SideB: &oddsmath.MiddleSide{Bookmaker: "Pinnacle", Selection: "Under 47.5", Line: 47.5, Odds: 120, Market: "Total Points"},
	}

	r, err := render(a, baseUser(), oddsmath.DefaultProbTable())
	require.NoError(t, err)
	for _, line := range r.Msg.Lines {
		assert.NotEqual(t, "Risked", line.Label)
	}
}

func TestRenderMiddleMissingSides(t *testing.T) {
	a := &alert.Alert{ID: "al-bad", Class: alert.ClassMiddle, Match: "X vs Y"}
	_, err := render(a, baseUser(), oddsmath.DefaultProbTable())
	assert.Error(t, err)
}

func TestRenderGoodEV(t *testing.T) {
	a := &alert.Alert{
		ID:    "al-ev",
		Class: alert.ClassGoodEV,
		Match: "Djokovic vs Alcaraz",
		EVPct: 5.2,
		Outcomes: []alert.Outcome{
			{Casino: "Stake", Selection: "Djokovic", Odds: 150},
		},
	}
	u := baseUser()

	r, err := render(a, u, oddsmath.DefaultProbTable())
	require.NoError(t, err)
	assert.Contains(t, r.Msg.Headline, "+EV 5.20%")
	assert.Greater(t, r.TotalStake, 0.0)
	assert.Less(t, r.TotalStake, u.DefaultBudget+0.01, "stake limitada ao budget")
	assert.Greater(t, r.ExpectedProfit, 0.0)
}
