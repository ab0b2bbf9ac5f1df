package oddsmath

import "fmt"

// Conversões de cotas. Duas convenções circulam no intake: decimal (>= 1.01)
// e americana (inteiro com |valor| >= 100).

// AmericanToDecimal converte cota americana para decimal.
// +150 → 2.50, -150 → 1.6667
func AmericanToDecimal(american int) (float64, error) {
	if american > -100 && american < 100 {
		return 0, fmt.Errorf("invalid american odds %d: |value| must be >= 100", american)
	}
	if american > 0 {
		return 1 + float64(american)/100.0, nil
	}
	return 1 + 100.0/float64(-american), nil
}

// DecimalToAmerican converte cota decimal para americana.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal < 1.01 {
		return 0, fmt.Errorf("invalid decimal odds %.4f: must be >= 1.01", decimal)
	}
	if decimal >= 2.0 {
		return int((decimal - 1) * 100), nil
	}
	return int(-100 / (decimal - 1)), nil
}

// ImpliedFromAmerican calcula a probabilidade implícita de uma cota americana.
// +odds → 100/(odds+100); -odds → |odds|/(|odds|+100)
func ImpliedFromAmerican(american int) (float64, error) {
	if american > -100 && american < 100 {
		return 0, fmt.Errorf("invalid american odds %d", american)
	}
	if american > 0 {
		return 100.0 / (float64(american) + 100.0), nil
	}
	a := float64(-american)
	return a / (a + 100.0), nil
}

// ImpliedFromDecimal é 1/d.
func ImpliedFromDecimal(decimal float64) float64 {
	if decimal <= 0 {
		return 0
	}
	return 1.0 / decimal
}

// NoVigPair normaliza as probabilidades implícitas de um par para somar 1.
func NoVigPair(americanA, americanB int) (pA, pB float64, err error) {
	rawA, err := ImpliedFromAmerican(americanA)
	if err != nil {
		return 0, 0, err
	}
	rawB, err := ImpliedFromAmerican(americanB)
	if err != nil {
		return 0, 0, err
	}
	norm := rawA + rawB
	return rawA / norm, rawB / norm, nil
}
