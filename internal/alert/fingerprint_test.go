package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/oddsmath"
)

var (
	sideOver35  = oddsmath.MiddleSide{Bookmaker: "bet365", Selection: "Over 3.5", Line: 3.5, Odds: -105, Market: "Total Goals"}
	sideUnder45 = oddsmath.MiddleSide{Bookmaker: "Pinnacle", Selection: "Under 4.5", Line: 4.5, Odds: 120, Market: "Total Goals"}
)

func sampleAlert() *Alert {
	return &Alert{
		EventID: "EV_123",
		Class:   ClassArbitrage,
		Match:   "Lakers vs Celtics",
		Market:  "Moneyline",
		Outcomes: []Outcome{
			{Casino: "bet365", Selection: "Home", Odds: 110},
			{Casino: "Pinnacle", Selection: "Away", Odds: -105},
		},
	}
}

func TestFingerprintStable(t *testing.T) {
	a := sampleAlert()
	b := sampleAlert()
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintIgnoresOutcomeOrder(t *testing.T) {
	a := sampleAlert()
	b := sampleAlert()
	b.Outcomes[0], b.Outcomes[1] = b.Outcomes[1], b.Outcomes[0]
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintSensitiveToOdds(t *testing.T) {
	a := sampleAlert()
	b := sampleAlert()
	b.Outcomes[0].Odds = 115
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintFallsBackToMatchMarket(t *testing.T) {
	a := sampleAlert()
	a.EventID = ""
	b := sampleAlert()
	b.EventID = ""
	b.Match = "  LAKERS   vs Celtics " // caixa e espaços normalizados
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	c := sampleAlert()
	c.EventID = ""
	c.Market = "Spread"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}

func TestFingerprintCoversMiddleSides(t *testing.T) {
	a := sampleAlert()
	a.Class = ClassMiddle
	a.Outcomes = nil
	a.SideA = &sideOver35
	a.SideB = &sideUnder45

	b := sampleAlert()
	b.Class = ClassMiddle
	b.Outcomes = nil
	other := sideOver35
	other.Line = 2.5
	b.SideA = &other
	b.SideB = &sideUnder45

	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestDedupIndexTTL(t *testing.T) {
	d := NewDedupIndex(zap.NewNop(), nil, 50*time.Millisecond)
	ctx := context.Background()

	assert.False(t, d.Seen(ctx, "fp1"))
	assert.True(t, d.Seen(ctx, "fp1"), "repetição dentro da janela")
	assert.False(t, d.Seen(ctx, "fp2"))

	time.Sleep(60 * time.Millisecond)
	assert.False(t, d.Seen(ctx, "fp1"), "janela expirada volta a aceitar")
}
