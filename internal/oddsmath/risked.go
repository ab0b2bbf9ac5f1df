package oddsmath

import "fmt"

// Solver RISKED: desequilíbrio intencional num par de cotas. O lado
// desfavorecido perde exatamente riskPct*budget; o favorecido concentra o
// resto. EV avaliado sob probabilidades no-vig.

type RiskedResult struct {
	Stakes     [2]float64
	Returns    [2]float64
	Profits    [2]float64 // positivo quando o favorecido vence
	Favored    int
	TotalStake float64
	MaxProfit  float64
	RiskLoss   float64 // perda no cenário desfavorecido (valor absoluto)
	RiskReward float64 // MaxProfit / RiskLoss

	EVFair     float64 // EV em dólares sob probabilidades no-vig
	EVFairPct  float64
	BreakEvenP float64 // prob mínima do favorecido para EV >= 0
}

// RiskedStakes aloca o par para que a perda no lado desfavorecido seja
// riskPct (fração do budget, ex: 0.05).
func RiskedStakes(budget float64, americanA, americanB int, riskPct float64, favored int) (RiskedResult, error) {
	if budget <= 0 {
		return RiskedResult{}, fmt.Errorf("budget must be positive, got %.2f", budget)
	}
	if favored != 0 && favored != 1 {
		return RiskedResult{}, fmt.Errorf("favored must be 0 or 1, got %d", favored)
	}
	if riskPct <= 0 || riskPct >= 1 {
		return RiskedResult{}, fmt.Errorf("riskPct must be in (0,1), got %.4f", riskPct)
	}

	dec := [2]float64{}
	for i, a := range [2]int{americanA, americanB} {
		d, err := AmericanToDecimal(a)
		if err != nil {
			return RiskedResult{}, err
		}
		dec[i] = d
	}

	riskAmount := budget * riskPct
	unfav := 1 - favored

	// stake_unfav*dec_unfav - budget = -riskAmount
	stakeUnfav := (budget - riskAmount) / dec[unfav]
	stakeFav := budget - stakeUnfav

	var res RiskedResult
	res.Favored = favored
	res.Stakes[favored] = stakeFav
	res.Stakes[unfav] = stakeUnfav
	res.TotalStake = budget
	for i := 0; i < 2; i++ {
		res.Returns[i] = res.Stakes[i] * dec[i]
		res.Profits[i] = res.Returns[i] - budget
	}
	res.MaxProfit = res.Profits[favored]
	if res.Profits[unfav] < 0 {
		res.RiskLoss = -res.Profits[unfav]
	}
	if res.RiskLoss > 0 {
		res.RiskReward = res.MaxProfit / res.RiskLoss
	}

	// probabilidades no-vig e EV
	pA, pB, err := NoVigPair(americanA, americanB)
	if err != nil {
		return RiskedResult{}, err
	}
	probs := [2]float64{pA, pB}
	res.EVFair = probs[0]*res.Profits[0] + probs[1]*res.Profits[1]
	res.EVFairPct = ROIPct(res.TotalStake, res.EVFair)

	// break-even do favorecido: p*pf + (1-p)*pu = 0
	if res.Profits[favored] != res.Profits[unfav] {
		be := -res.Profits[unfav] / (res.Profits[favored] - res.Profits[unfav])
		res.BreakEvenP = clamp01(be)
	}

	return res, nil
}

// OptimalRisked testa os dois lados como favorecido e devolve o de melhor
// razão risco/retorno.
func OptimalRisked(budget float64, americanA, americanB int, riskPct float64) (RiskedResult, error) {
	r0, err := RiskedStakes(budget, americanA, americanB, riskPct, 0)
	if err != nil {
		return RiskedResult{}, err
	}
	r1, err := RiskedStakes(budget, americanA, americanB, riskPct, 1)
	if err != nil {
		return RiskedResult{}, err
	}
	if r0.RiskReward >= r1.RiskReward {
		return r0, nil
	}
	return r1, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
