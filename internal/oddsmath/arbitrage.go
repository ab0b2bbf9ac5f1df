package oddsmath

import "fmt"

// Solver SAFE: stakes de retorno igual sobre n saídas.
// s_i*d_i = R para todo i, Σs_i = B ⇒ R = B / Σ(1/d_i).

type SafeResult struct {
	HasArbitrage bool
	Stakes       []float64
	Returns      []float64
	Return       float64 // R (igual em todas as saídas)
	Profit       float64 // R - B; negativo quando não há arb
	ProfitPct    float64 // sobre o budget
	ArbPct       float64 // ((1-Σ1/d)/Σ1/d)*100, 0 quando não há arb
	InverseSum   float64
}

// SafeStakes resolve o split de retorno igual para cotas decimais.
// Calcula mesmo sem arbitragem (mostra como minimizar a perda); o caller
// decide pelo campo HasArbitrage.
func SafeStakes(budget float64, decimalOdds []float64) (SafeResult, error) {
	if budget <= 0 {
		return SafeResult{}, fmt.Errorf("budget must be positive, got %.2f", budget)
	}
	if len(decimalOdds) < 2 {
		return SafeResult{}, fmt.Errorf("need at least 2 outcomes, got %d", len(decimalOdds))
	}

	invSum := 0.0
	for _, d := range decimalOdds {
		if d < 1.01 {
			return SafeResult{}, fmt.Errorf("invalid decimal odds %.4f", d)
		}
		invSum += 1.0 / d
	}

	r := budget / invSum
	stakes := make([]float64, len(decimalOdds))
	returns := make([]float64, len(decimalOdds))
	for i, d := range decimalOdds {
		stakes[i] = r / d
		returns[i] = stakes[i] * d
	}

	res := SafeResult{
		HasArbitrage: invSum < 1.0,
		Stakes:       stakes,
		Returns:      returns,
		Return:       r,
		Profit:       r - budget,
		ProfitPct:    (r - budget) / budget * 100,
		InverseSum:   invSum,
	}
	if res.HasArbitrage {
		res.ArbPct = (1 - invSum) / invSum * 100
	}
	return res, nil
}

// SafeStakesAmerican é o atalho para o par de cotas americanas do intake.
func SafeStakesAmerican(budget float64, americanOdds []int) (SafeResult, error) {
	dec := make([]float64, len(americanOdds))
	for i, a := range americanOdds {
		d, err := AmericanToDecimal(a)
		if err != nil {
			return SafeResult{}, err
		}
		dec[i] = d
	}
	return SafeStakes(budget, dec)
}

// ArbPct calcula a porcentagem de arbitragem de um conjunto de cotas
// americanas; 0 quando a soma implícita é >= 1.
func ArbPct(americanOdds []int) (float64, error) {
	invSum := 0.0
	for _, a := range americanOdds {
		d, err := AmericanToDecimal(a)
		if err != nil {
			return 0, err
		}
		invSum += 1.0 / d
	}
	if invSum >= 1.0 {
		return 0, nil
	}
	return (1 - invSum) / invSum * 100, nil
}

// ROIPct é profit/cash em %; 0 para cash não-positivo.
func ROIPct(cash, profit float64) float64 {
	if cash <= 0 {
		return 0
	}
	return profit / cash * 100
}
