package oddsmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskedStakesLossIsExactlyRiskPct(t *testing.T) {
	res, err := RiskedStakes(1000, 110, -120, 0.05, 0)
	require.NoError(t, err)

	assert.InDelta(t, 50, res.RiskLoss, 0.01, "lado desfavorecido perde riskPct*budget")
	assert.InDelta(t, 1000, res.Stakes[0]+res.Stakes[1], 0.01)
	assert.Greater(t, res.MaxProfit, 0.0)
	assert.Greater(t, res.RiskReward, 0.0)
}

func TestRiskedStakesBreakEven(t *testing.T) {
	res, err := RiskedStakes(1000, 110, -120, 0.05, 0)
	require.NoError(t, err)

	// no break-even o EV é zero por definição
	ev := res.BreakEvenP*res.Profits[0] + (1-res.BreakEvenP)*res.Profits[1]
	assert.InDelta(t, 0, ev, 0.01)
}

func TestRiskedStakesValidation(t *testing.T) {
	_, err := RiskedStakes(0, 110, -120, 0.05, 0)
	assert.Error(t, err)
	_, err = RiskedStakes(1000, 110, -120, 1.5, 0)
	assert.Error(t, err)
	_, err = RiskedStakes(1000, 110, -120, 0.05, 2)
	assert.Error(t, err)
}

func TestOptimalRiskedPicksBetterRatio(t *testing.T) {
	best, err := OptimalRisked(1000, 130, -150, 0.05)
	require.NoError(t, err)

	r0, _ := RiskedStakes(1000, 130, -150, 0.05, 0)
	r1, _ := RiskedStakes(1000, 130, -150, 0.05, 1)
	assert.GreaterOrEqual(t, best.RiskReward, r0.RiskReward)
	assert.GreaterOrEqual(t, best.RiskReward, r1.RiskReward)
}
