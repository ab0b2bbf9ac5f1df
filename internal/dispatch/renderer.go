package dispatch

import (
	"fmt"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
	"github.com/radieske/arb-alert-core/pkg/contracts/callback"
	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

// Rendered é o alerta personalizado: stakes no budget do usuário com o
// arredondamento/randomizer dele, pronto para o transporte.
type Rendered struct {
	Msg            messages.Message
	TotalStake     float64
	ExpectedProfit float64
}

// render calcula as stakes da classe no perfil do usuário e monta a
// mensagem. Propaga ErrRoundedAway quando o arredondamento mata o profit.
func render(a *alert.Alert, u *ledger.User, table oddsmath.ProbTable) (Rendered, error) {
	switch a.Class {
	case alert.ClassArbitrage:
		return renderArbitrage(a, u)
	case alert.ClassMiddle:
		return renderMiddle(a, u, table)
	case alert.ClassGoodEV:
		return renderGoodEV(a, u)
	}
	return Rendered{}, fmt.Errorf("classe desconhecida %q", a.Class)
}

func randomizer(u *ledger.User) *oddsmath.Randomizer {
	if !u.RandomizerEnabled || len(u.RandomizerAmounts) == 0 {
		return nil
	}
	return &oddsmath.Randomizer{Amounts: u.RandomizerAmounts, Mode: u.RandomizerMode}
}

func renderArbitrage(a *alert.Alert, u *ledger.User) (Rendered, error) {
	odds := make([]int, len(a.Outcomes))
	for i, o := range a.Outcomes {
		odds[i] = o.Odds
	}
	res, err := oddsmath.SafeStakesAmerican(u.DefaultBudget, odds)
	if err != nil {
		return Rendered{}, err
	}

	stakes := res.Stakes
	total := u.DefaultBudget
	profit := res.Profit
	roi := res.ProfitPct

	// arredondamento amigável só no caso clássico de duas pernas
	if len(odds) == 2 {
		rounded, err := oddsmath.RoundArbitrageStakes(stakes[0], stakes[1], odds[0], odds[1],
			u.DefaultBudget, u.RoundingLevel, u.RoundingMode, randomizer(u))
		if err != nil {
			return Rendered{}, err
		}
		stakes = []float64{rounded.StakeA, rounded.StakeB}
		total = rounded.TotalStake
		profit = rounded.ProfitGuaranteed
		roi = rounded.ROIPct
	}

	m := messages.Message{
		Headline: fmt.Sprintf("💰 Arbitrage %.2f%% — %s", a.ArbPct, a.Match),
		Footer:   fmt.Sprintf("Stake %s → guaranteed %s (%.2f%%)", money(total), money(profit), roi),
	}
	addLeagueMarket(&m, a)
	for i, o := range a.Outcomes {
		info := alert.LookupBookmaker(o.Casino)
		m.Lines = append(m.Lines, messages.Line{
			Icon:  info.Emoji,
			Label: o.Casino,
			Value: fmt.Sprintf("%s @ %+d — %s", o.Selection, o.Odds, money(stakes[i])),
		})
		addLinkOnce(&m, o.Casino, info.URL)
	}
	addBetActions(&m, a, total, profit)
	return Rendered{Msg: m, TotalStake: total, ExpectedProfit: profit}, nil
}

func renderMiddle(a *alert.Alert, u *ledger.User, table oddsmath.ProbTable) (Rendered, error) {
	if a.SideA == nil || a.SideB == nil {
		return Rendered{}, fmt.Errorf("alerta middle %s sem os dois lados", a.ID)
	}
	res, err := oddsmath.ClassifyMiddle(*a.SideA, *a.SideB, u.DefaultBudget,
		u.RoundingLevel, u.RoundingMode, table)
	if err != nil {
		return Rendered{}, err
	}

	icon := "🎯"
	if res.Type == oddsmath.MiddleSafe {
		icon = "🛡️"
	}
	m := messages.Message{
		Headline: fmt.Sprintf("%s Middle (%s) — %s", icon, res.Type, a.Match),
		Footer: fmt.Sprintf("Middle hits: %s · one side: %s / %s · EV %s (%.1f%% chance)",
			money(res.ProfitMiddle), money(res.ProfitAOnly), money(res.ProfitBOnly),
			money(res.EV), res.Prob*100),
	}
	addLeagueMarket(&m, a)
	for _, side := range []struct {
		s     *oddsmath.MiddleSide
		stake float64
	}{{a.SideA, res.StakeA}, {a.SideB, res.StakeB}} {
		info := alert.LookupBookmaker(side.s.Bookmaker)
		m.Lines = append(m.Lines, messages.Line{
			Icon:  info.Emoji,
			Label: side.s.Bookmaker,
			Value: fmt.Sprintf("%s @ %+d — %s", side.s.Selection, side.s.Odds, money(side.stake)),
		})
		addLinkOnce(&m, side.s.Bookmaker, info.URL)
	}
	// middle arriscado: mostra a alocação alternativa em modo risked, com a
	// perda travada no risk_pct do perfil
	if res.Type == oddsmath.MiddleRisky && u.RiskPct > 0 && u.RiskPct < 100 {
		rk, rerr := oddsmath.OptimalRisked(u.DefaultBudget, a.SideA.Odds, a.SideB.Odds, u.RiskPct/100)
		if rerr == nil {
			m.Lines = append(m.Lines, messages.Line{
				Icon:  "⚖️",
				Label: "Risked",
				Value: fmt.Sprintf("%s / %s → max %s, risks %s (%.1f%%)",
					money(rk.Stakes[0]), money(rk.Stakes[1]),
					money(rk.MaxProfit), money(rk.RiskLoss), u.RiskPct),
			})
		}
	}
	addBetActions(&m, a, res.TotalStake, res.EV)
	return Rendered{Msg: m, TotalStake: res.TotalStake, ExpectedProfit: res.EV}, nil
}

func renderGoodEV(a *alert.Alert, u *ledger.User) (Rendered, error) {
	o := a.Outcomes[0]
	res, err := oddsmath.GoodEVSizing(u.DefaultBudget, o.Odds, a.EVPct)
	if err != nil {
		return Rendered{}, err
	}
	info := alert.LookupBookmaker(o.Casino)

	m := messages.Message{
		Headline: fmt.Sprintf("📈 +EV %.2f%% — %s", a.EVPct, a.Match),
		Lines: []messages.Line{
			{Icon: info.Emoji, Label: o.Casino,
				Value: fmt.Sprintf("%s @ %+d — %s", o.Selection, o.Odds, money(res.Stake))},
			{Icon: "🎲", Label: "Win rate", Value: fmt.Sprintf("%.1f%%", res.TrueWinRate*100)},
		},
		Footer: fmt.Sprintf("If it wins: %s · EV %s", money(res.ProfitIfWin), money(res.EVDollars)),
	}
	addLeagueMarket(&m, a)
	addLinkOnce(&m, o.Casino, info.URL)
	addBetActions(&m, a, res.Stake, res.EVDollars)
	return Rendered{Msg: m, TotalStake: res.Stake, ExpectedProfit: res.EVDollars}, nil
}

func addLeagueMarket(m *messages.Message, a *alert.Alert) {
	if a.League != "" {
		m.Lines = append(m.Lines, messages.Line{Icon: "🏆", Label: "League", Value: a.League})
	}
	if a.Market != "" {
		m.Lines = append(m.Lines, messages.Line{Icon: "📊", Label: "Market", Value: a.Market})
	}
}

// addLinkOnce evita botão repetido quando as duas pernas estão no mesmo book.
func addLinkOnce(m *messages.Message, casino, url string) {
	if url == "" {
		return
	}
	for _, act := range m.Actions {
		if act.Kind == messages.ActionLink && act.Label == casino {
			return
		}
	}
	m.Actions = append(m.Actions, messages.Action{Kind: messages.ActionLink, Label: casino, Href: url})
}

func addBetActions(m *messages.Message, a *alert.Alert, stake, profit float64) {
	m.Actions = append(m.Actions, messages.Action{
		Kind:  messages.ActionCallback,
		Label: "✍️ I BET",
		Token: callback.IBet(string(a.Class), a.ID, stake, profit),
	})
}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}
