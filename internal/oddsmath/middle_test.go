package oddsmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleStakesSafePair(t *testing.T) {
	// Over 3.5 @ -105 / Under 4.5 @ +120, budget $500
	res, err := MiddleStakes(-105, 120, 500, 0, RoundNearest)
	require.NoError(t, err)

	assert.InDelta(t, 500, res.TotalStake, 0.01)
	assert.InDelta(t, res.ReturnA, res.ReturnB, 0.05, "split de retorno igual")
	assert.Greater(t, res.ProfitAOnly, 0.0)
	assert.Greater(t, res.ProfitBOnly, 0.0)
	assert.InDelta(t, 534, res.ProfitMiddle, 2.0, "cenário middle paga os dois lados")
}

func TestClassifyMiddleSafe(t *testing.T) {
	sideA := MiddleSide{Bookmaker: "bet365", Selection: "Over 3.5", Line: 3.5, Odds: -105, Market: "Total Goals"}
	sideB := MiddleSide{Bookmaker: "Pinnacle", Selection: "Under 4.5", Line: 4.5, Odds: 120, Market: "Total Goals"}

	res, err := ClassifyMiddle(sideA, sideB, 500, 0, RoundNearest, DefaultProbTable())
	require.NoError(t, err)

	assert.Equal(t, MiddleSafe, res.Type)
	assert.False(t, res.WinPush)
	assert.InDelta(t, 1.0, res.Gap, 1e-9)
	assert.Greater(t, res.Prob, 0.0)
	assert.Greater(t, res.EV, 0.0)
}

func TestClassifyMiddleRisky(t *testing.T) {
	// odds apertadas: os cenários simples perdem, só o middle paga
	sideA := MiddleSide{Selection: "Over 220.5", Line: 220.5, Odds: -120, Market: "Total Points"}
	sideB := MiddleSide{Selection: "Under 223.5", Line: 223.5, Odds: -120, Market: "Total Points"}

	res, err := ClassifyMiddle(sideA, sideB, 400, 0, RoundNearest, DefaultProbTable())
	require.NoError(t, err)

	assert.Equal(t, MiddleRisky, res.Type)
	assert.Less(t, res.ProfitAOnly, 0.0)
	assert.Greater(t, res.ProfitMiddle, 0.0)
}

func TestClassifyMiddleWinPushHybrid(t *testing.T) {
	// Over 3 (inteiro) + Under 3.5: no total exato 3 o Over empata e o
	// Under ganha; o cenário "middle" vira stake devolvida + retorno
	sideA := MiddleSide{Selection: "Over 3", Line: 3, Odds: 105, Market: "Total Goals"}
	sideB := MiddleSide{Selection: "Under 3.5", Line: 3.5, Odds: 105, Market: "Total Goals"}

	res, err := ClassifyMiddle(sideA, sideB, 200, 0, RoundNearest, DefaultProbTable())
	require.NoError(t, err)

	assert.True(t, res.WinPush)
	expected := res.StakeA + res.ReturnB - res.TotalStake
	assert.InDelta(t, expected, res.ProfitMiddle, 0.01)
}

func TestProbTableBuckets(t *testing.T) {
	table := DefaultProbTable()

	assert.InDelta(t, 0.25, table.Estimate("Player Points", 0.5), 1e-9)
	assert.InDelta(t, 0.15, table.Estimate("Point Spread", 1.0), 1e-9)
	assert.InDelta(t, 0.15, table.Estimate("Total Goals", 1.0), 1e-9)
	assert.InDelta(t, 0.10, table.Estimate("Series Winner", 1.0), 1e-9)
	assert.InDelta(t, 0.05, table.Estimate("Total Goals", 99), 1e-9, "gap fora da tabela cai no fallback")
}

func TestClassifyMarket(t *testing.T) {
	assert.Equal(t, FamilyPlayerProp, ClassifyMarket("Player Assists"))
	assert.Equal(t, FamilyPointSpread, ClassifyMarket("Handicap Spread"))
	assert.Equal(t, FamilyTotal, ClassifyMarket("Total Points"))
	assert.Equal(t, FamilyOther, ClassifyMarket("First Team To Score"))
}
