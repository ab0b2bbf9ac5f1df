package oddsmath

import (
	"fmt"
	"math"
	"strings"
)

// Middles: dois lados sobrepostos (ex: Over 3.5 / Under 4.5). Split de
// retorno igual como no arb; três cenários: só A, só B, ou os dois (middle).

type MiddleType string

const (
	MiddleSafe    MiddleType = "middle_safe"  // os dois cenários simples >= 0
	MiddleRisky   MiddleType = "middle_risky" // pelo menos um simples < 0, middle > 0
	MiddleUnknown MiddleType = "unknown"
)

// MiddleSide é um dos lados da oportunidade, como chega no intake.
type MiddleSide struct {
	Bookmaker string  `json:"bookmaker"`
	Selection string  `json:"selection"` // "Over 3.5", "Under 4.5"
	Line      float64 `json:"line"`
	Odds      int     `json:"odds"` // americana
	Market    string  `json:"market"`
}

type MiddleResult struct {
	Type             MiddleType
	StakeA, StakeB   float64
	ReturnA, ReturnB float64
	TotalStake       float64
	ProfitAOnly      float64
	ProfitBOnly      float64
	ProfitMiddle     float64 // cenário both-win (ou win+push)
	WinPush          bool    // híbrido WIN+PUSH (Over inteiro + Under inteiro+0.5)
	Gap              float64
	Prob             float64 // probabilidade estimada do middle
	EV               float64
	EVPct            float64
}

// MiddleStakes faz o split de retorno igual do par e calcula os três
// cenários de profit, com arredondamento opcional.
func MiddleStakes(americanA, americanB int, budget float64, level int, mode RoundMode) (MiddleResult, error) {
	if budget <= 0 {
		return MiddleResult{}, fmt.Errorf("budget must be positive, got %.2f", budget)
	}
	decA, err := AmericanToDecimal(americanA)
	if err != nil {
		return MiddleResult{}, err
	}
	decB, err := AmericanToDecimal(americanB)
	if err != nil {
		return MiddleResult{}, err
	}

	stakeA := budget / (1 + decA/decB)
	stakeB := budget - stakeA
	if level > 0 {
		stakeA, stakeB = RoundStakes(stakeA, stakeB, budget, level, mode)
	} else {
		stakeA, stakeB = roundCents(stakeA), roundCents(stakeB)
	}

	retA := stakeA * decA
	retB := stakeB * decB
	total := stakeA + stakeB

	return MiddleResult{
		StakeA:       stakeA,
		StakeB:       stakeB,
		ReturnA:      retA,
		ReturnB:      retB,
		TotalStake:   total,
		ProfitAOnly:  retA - total,
		ProfitBOnly:  retB - total,
		ProfitMiddle: retA + retB - total,
	}, nil
}

// ClassifyMiddle calcula stakes, classifica o middle (safe/risky), estima a
// probabilidade pela tabela e computa o EV. Reconhece o híbrido WIN+PUSH
// (Over inteiro + Under inteiro+0.5 e o simétrico) e recalcula o cenário
// middle como stake-do-push + retorno-do-vencedor - total.
func ClassifyMiddle(sideA, sideB MiddleSide, budget float64, level int, mode RoundMode, table ProbTable) (MiddleResult, error) {
	res, err := MiddleStakes(sideA.Odds, sideB.Odds, budget, level, mode)
	if err != nil {
		return MiddleResult{}, err
	}

	res.Gap = math.Abs(sideA.Line - sideB.Line)
	market := sideA.Market
	if market == "" {
		market = sideB.Market
	}
	res.Prob = table.Estimate(market, res.Gap)

	// híbrido WIN+PUSH nas linhas Over/Under
	if over, under, ok := overUnder(sideA, sideB); ok {
		switch {
		case isInteger(over.line) && isHalf(under.line) && almostEqual(under.line-over.line, 0.5):
			// Over inteiro + Under inteiro+0.5 → no valor inteiro, Over empata
			res.WinPush = true
			res.ProfitMiddle = over.stake(res) + under.ret(res) - res.TotalStake
		case isInteger(under.line) && isHalf(over.line) && almostEqual(under.line-over.line, 0.5):
			// Under inteiro + Over inteiro-0.5 → no valor inteiro, Under empata
			res.WinPush = true
			res.ProfitMiddle = under.stake(res) + over.ret(res) - res.TotalStake
		}
	}

	switch {
	case res.ProfitAOnly >= 0 && res.ProfitBOnly >= 0:
		res.Type = MiddleSafe
	case res.ProfitMiddle > 0:
		res.Type = MiddleRisky
	default:
		res.Type = MiddleUnknown
	}

	worst := math.Min(res.ProfitAOnly, res.ProfitBOnly)
	res.EV = res.Prob*res.ProfitMiddle + (1-res.Prob)*worst
	res.EVPct = ROIPct(res.TotalStake, res.EV)

	return res, nil
}

// sideRef referencia um lado (a ou b) preservando qual é Over e qual é Under.
type sideRef struct {
	line float64
	isA  bool
}

func (s sideRef) stake(r MiddleResult) float64 {
	if s.isA {
		return r.StakeA
	}
	return r.StakeB
}

func (s sideRef) ret(r MiddleResult) float64 {
	if s.isA {
		return r.ReturnA
	}
	return r.ReturnB
}

func overUnder(a, b MiddleSide) (over, under sideRef, ok bool) {
	selA := strings.ToLower(a.Selection)
	selB := strings.ToLower(b.Selection)
	switch {
	case strings.Contains(selA, "over") && strings.Contains(selB, "under"):
		return sideRef{a.Line, true}, sideRef{b.Line, false}, true
	case strings.Contains(selA, "under") && strings.Contains(selB, "over"):
		return sideRef{b.Line, false}, sideRef{a.Line, true}, true
	}
	return sideRef{}, sideRef{}, false
}

func isInteger(v float64) bool { return almostEqual(v, math.Round(v)) }
func isHalf(v float64) bool    { return almostEqual(v-math.Floor(v), 0.5) }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }
