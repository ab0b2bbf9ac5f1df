package oddsmath

// Positive EV (good odds): bet de lado único cuja cota supera a
// probabilidade justa. O EV-% vem calculado do produtor; daqui saem o
// winrate real e os profits por cenário.

type GoodEVResult struct {
	Stake       float64
	DecimalOdds float64
	ProfitIfWin float64 // stake*(dec-1)
	LossIfLose  float64 // = stake
	TrueWinRate float64
	EVDollars   float64 // stake * ev%/100
	EVPct       float64
}

// TrueWinRate deriva a probabilidade real de vitória a partir da cota e do
// EV-% anunciado: p = (ev/100 + 1) / dec, clampada em [0,1].
func TrueWinRate(american int, evPct float64) (float64, error) {
	dec, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return clamp01((evPct/100 + 1) / dec), nil
}

// GoodEVSizing avalia um good-EV com a stake do usuário.
func GoodEVSizing(stake float64, american int, evPct float64) (GoodEVResult, error) {
	dec, err := AmericanToDecimal(american)
	if err != nil {
		return GoodEVResult{}, err
	}
	winRate, err := TrueWinRate(american, evPct)
	if err != nil {
		return GoodEVResult{}, err
	}
	return GoodEVResult{
		Stake:       stake,
		DecimalOdds: dec,
		ProfitIfWin: stake * (dec - 1),
		LossIfLose:  stake,
		TrueWinRate: winRate,
		EVDollars:   stake * evPct / 100,
		EVPct:       evPct,
	}, nil
}
