package confirm

import (
	"errors"
	"fmt"
	"math"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
)

// Respostas do questionário de resultado, por classe:
//
//	arbitrage: won | problem
//	middle:    jackpot | arb | lost
//	good_ev:   won | push | lost
const (
	AnswerWon     = "won"
	AnswerProblem = "problem"
	AnswerJackpot = "jackpot"
	AnswerArb     = "arb"
	AnswerPush    = "push"
	AnswerLost    = "lost"
)

var ErrBadAnswer = errors.New("resposta inválida para a classe da bet")

// Resolution é o efeito de uma resposta terminal.
type Resolution struct {
	Status ledger.BetStatus
	Profit float64
}

// resolve mapeia (classe, resposta) no status final e no lucro realizado.
// O alerta original entra para recompor os cenários de middle e a odd do
// good_ev com as stakes reais da bet.
func resolve(b *ledger.UserBet, a *alert.Alert, answer string, table oddsmath.ProbTable) (Resolution, error) {
	switch b.Class {
	case alert.ClassArbitrage:
		switch answer {
		case AnswerWon:
			return Resolution{Status: ledger.StatusWon, Profit: b.ExpectedProfit}, nil
		case AnswerProblem:
			// uma das pernas falhou: assume perda total do stake
			return Resolution{Status: ledger.StatusLost, Profit: -b.TotalStake}, nil
		}

	case alert.ClassMiddle:
		switch answer {
		case AnswerJackpot, AnswerArb:
			res, err := middleScenarios(b, a, table)
			if err != nil {
				return Resolution{}, err
			}
			if answer == AnswerJackpot {
				return Resolution{Status: ledger.StatusWon, Profit: res.ProfitMiddle}, nil
			}
			// middle não bateu mas as duas pernas seguraram: pior cenário simples
			return Resolution{Status: ledger.StatusWon, Profit: math.Min(res.ProfitAOnly, res.ProfitBOnly)}, nil
		case AnswerLost:
			return Resolution{Status: ledger.StatusLost, Profit: -b.TotalStake}, nil
		}

	case alert.ClassGoodEV:
		switch answer {
		case AnswerWon:
			if a == nil || len(a.Outcomes) == 0 {
				return Resolution{}, fmt.Errorf("alerta %s sem outcome para good_ev", b.AlertID)
			}
			dec, err := oddsmath.AmericanToDecimal(a.Outcomes[0].Odds)
			if err != nil {
				return Resolution{}, err
			}
			return Resolution{Status: ledger.StatusWon, Profit: b.TotalStake * (dec - 1)}, nil
		case AnswerPush:
			return Resolution{Status: ledger.StatusPush, Profit: 0}, nil
		case AnswerLost:
			return Resolution{Status: ledger.StatusLost, Profit: -b.TotalStake}, nil
		}
	}
	return Resolution{}, ErrBadAnswer
}

// middleScenarios recalcula os três cenários com o total realmente apostado,
// já que arredondamento e randomizer mudam as stakes do alerta original.
func middleScenarios(b *ledger.UserBet, a *alert.Alert, table oddsmath.ProbTable) (oddsmath.MiddleResult, error) {
	if a == nil || a.SideA == nil || a.SideB == nil {
		return oddsmath.MiddleResult{}, fmt.Errorf("alerta %s sem os lados do middle", b.AlertID)
	}
	return oddsmath.ClassifyMiddle(*a.SideA, *a.SideB, b.TotalStake, 0, oddsmath.RoundNearest, table)
}
