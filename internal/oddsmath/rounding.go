package oddsmath

import (
	"errors"
	"math"
	"math/rand"
)

// Arredondamento de stakes para parecer menos suspeito nos books.
// Níveis válidos: 0 (centavo), 1, 5, 10. Modos: down, nearest, up.

type RoundMode string

const (
	RoundDown    RoundMode = "down"
	RoundNearest RoundMode = "nearest"
	RoundUp      RoundMode = "up"
)

// ErrRoundedAway sinaliza que o arredondamento matou a margem: o dispatcher
// descarta o alerta para esse usuário.
var ErrRoundedAway = errors.New("rounding destroyed the guaranteed profit")

// randomizador mantém as stakes acima de um piso mínimo
const randomizerFloor = 10.0

// RoundStakes arredonda o par conforme nível e modo. Para modos down e
// nearest o total nunca excede o budget: o lado maior é reduzido um múltiplo
// por vez até caber. O modo up pode exceder (escolha deliberada do usuário).
func RoundStakes(stakeA, stakeB, budget float64, level int, mode RoundMode) (float64, float64) {
	if level == 0 {
		return roundCents(stakeA), roundCents(stakeB)
	}

	a := smartRound(stakeA, level, mode)
	b := smartRound(stakeB, level, mode)

	if mode == RoundUp || a+b <= budget {
		return a, b
	}

	// reduz o lado maior um múltiplo por vez até total <= budget
	step := float64(level)
	for a+b > budget {
		if a >= b {
			a -= step
		} else {
			b -= step
		}
		if a <= 0 || b <= 0 {
			break
		}
	}
	return math.Max(a, 0), math.Max(b, 0)
}

func smartRound(v float64, level int, mode RoundMode) float64 {
	l := float64(level)
	switch mode {
	case RoundDown:
		return math.Floor(v/l) * l
	case RoundUp:
		return math.Ceil(v/l) * l
	default: // nearest
		return math.Round(v/l) * l
	}
}

// RoundedArb é o resultado recalculado a partir das stakes arredondadas.
type RoundedArb struct {
	StakeA, StakeB   float64
	ReturnA, ReturnB float64
	TotalStake       float64
	ProfitGuaranteed float64
	ROIPct           float64
}

// RoundArbitrageStakes arredonda (e opcionalmente randomiza) as stakes de um
// arb e recalcula retorno/profit com os valores finais. Retorna
// ErrRoundedAway quando o profit garantido recalculado fica <= 0.
func RoundArbitrageStakes(stakeA, stakeB float64, americanA, americanB int,
	budget float64, level int, mode RoundMode, rnd *Randomizer) (RoundedArb, error) {

	a, b := RoundStakes(stakeA, stakeB, budget, level, mode)
	if rnd != nil {
		a, b = rnd.Apply(a, b)
	}

	decA, err := AmericanToDecimal(americanA)
	if err != nil {
		return RoundedArb{}, err
	}
	decB, err := AmericanToDecimal(americanB)
	if err != nil {
		return RoundedArb{}, err
	}

	total := a + b
	retA := a * decA
	retB := b * decB
	profit := math.Min(retA, retB) - total

	if profit <= 0 {
		return RoundedArb{}, ErrRoundedAway
	}

	return RoundedArb{
		StakeA:           a,
		StakeB:           b,
		ReturnA:          retA,
		ReturnB:          retB,
		TotalStake:       total,
		ProfitGuaranteed: profit,
		ROIPct:           ROIPct(total, profit),
	}, nil
}

type RandomizerMode string

const (
	RandomizerUp     RandomizerMode = "up"
	RandomizerDown   RandomizerMode = "down"
	RandomizerRandom RandomizerMode = "random"
)

// Randomizer adiciona variação às stakes já arredondadas para quebrar
// padrões previsíveis. Amounts vem das preferências do usuário ({1,5,10}).
type Randomizer struct {
	Amounts []int
	Mode    RandomizerMode
	Rand    *rand.Rand // nil usa a fonte global
}

// Apply ajusta o par. Mode up soma nos dois lados; down subtrai respeitando
// o piso; random decide por lado num coin-flip independente.
func (r *Randomizer) Apply(stakeA, stakeB float64) (float64, float64) {
	if r == nil || len(r.Amounts) == 0 {
		return stakeA, stakeB
	}
	adj := float64(r.Amounts[r.intn(len(r.Amounts))])

	switch r.Mode {
	case RandomizerUp:
		stakeA += adj
		stakeB += adj
	case RandomizerDown:
		stakeA = math.Max(randomizerFloor, stakeA-adj)
		stakeB = math.Max(randomizerFloor, stakeB-adj)
	default: // random
		if r.intn(2) == 0 {
			stakeA += adj
		} else {
			stakeA = math.Max(randomizerFloor, stakeA-adj)
		}
		if r.intn(2) == 0 {
			stakeB += adj
		} else {
			stakeB = math.Max(randomizerFloor, stakeB-adj)
		}
	}
	return roundCents(stakeA), roundCents(stakeB)
}

func (r *Randomizer) intn(n int) int {
	if r.Rand != nil {
		return r.Rand.Intn(n)
	}
	return rand.Intn(n)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
