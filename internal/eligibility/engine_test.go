package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/ledger"
)

var testLimits = Limits{
	FreeDailyCap:  5,
	FreeSpacing:   2 * time.Hour,
	FreeMaxArbPct: 2.5,
}

func arbAlert(pct float64) *alert.Alert {
	return &alert.Alert{Class: alert.ClassArbitrage, League: "NBA", ArbPct: pct}
}

func newTestEngine(t *testing.T) (*Engine, *ledger.MemoryStore) {
	t.Helper()
	store := ledger.NewMemoryStore()
	return NewEngine(zap.NewNop(), store, testLimits), store
}

func freeUser(t *testing.T, store *ledger.MemoryStore) *ledger.User {
	t.Helper()
	u, err := store.GetOrCreateUser(context.Background(), "u1")
	require.NoError(t, err)
	return u
}

func TestCheckClassAndTier(t *testing.T) {
	e, store := newTestEngine(t)
	u := freeUser(t, store)
	now := time.Now()

	assert.Equal(t, ReasonOK, e.Check(u, arbAlert(2.0), now))

	mid := &alert.Alert{Class: alert.ClassMiddle, League: "NBA"}
	assert.Equal(t, ReasonClassDisabled, e.Check(u, mid, now))

	u.EnableMiddle = true
	assert.Equal(t, ReasonTier, e.Check(u, mid, now), "middle é premium")

	u.Tier = ledger.TierPremium
	assert.Equal(t, ReasonOK, e.Check(u, mid, now))
}

func TestCheckSportFilterAndMinPct(t *testing.T) {
	e, store := newTestEngine(t)
	u := freeUser(t, store)
	now := time.Now()

	u.Sports = []string{"nhl", "epl"}
	assert.Equal(t, ReasonSport, e.Check(u, arbAlert(2.0), now))

	u.Sports = []string{"nba"}
	assert.Equal(t, ReasonOK, e.Check(u, arbAlert(2.0), now))

	u.MinArbPct = 2.5
	assert.Equal(t, ReasonBelowMinPct, e.Check(u, arbAlert(2.0), now))
}

func TestCheckFreeArbCeiling(t *testing.T) {
	e, store := newTestEngine(t)
	u := freeUser(t, store)
	now := time.Now()

	assert.Equal(t, ReasonArbCeiling, e.Check(u, arbAlert(3.2), now),
		"arb gorda é isca de premium")

	u.Tier = ledger.TierPremium
	assert.Equal(t, ReasonOK, e.Check(u, arbAlert(3.2), now))
}

// Um free user recebe o primeiro alerta, fica bloqueado pelo espaçamento
// por 2h, e depois trava no teto diário de 5.
func TestFreeThrottleSpacingAndDailyCap(t *testing.T) {
	e, store := newTestEngine(t)
	u := freeUser(t, store)
	ctx := context.Background()

	now := time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)

	require.Equal(t, ReasonOK, e.Check(u, arbAlert(2.0), now))
	e.Commit(ctx, u, now)

	// três alertas elegíveis nos próximos 30 minutos: todos barrados
	for i := 1; i <= 3; i++ {
		at := now.Add(time.Duration(i*10) * time.Minute)
		assert.Equal(t, ReasonSpacing, e.Check(u, arbAlert(2.0), at))
	}

	// espaçados >2h passam até o teto de 5
	at := now
	for i := 2; i <= 5; i++ {
		at = at.Add(2*time.Hour + time.Minute)
		require.Equal(t, ReasonOK, e.Check(u, arbAlert(2.0), at), "alerta #%d", i)
		e.Commit(ctx, u, at)
	}

	at = at.Add(3 * time.Hour)
	assert.Equal(t, ReasonDailyCap, e.Check(u, arbAlert(2.0), at))

	// virada do dia zera o contador
	nextDay := time.Date(2025, 11, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, ReasonOK, e.Check(u, arbAlert(2.0), nextDay))
}

func TestCommitPersistsThrottle(t *testing.T) {
	e, store := newTestEngine(t)
	u := freeUser(t, store)
	ctx := context.Background()
	now := time.Now()

	e.Commit(ctx, u, now)

	persisted, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, persisted.AlertsToday)
	require.NotNil(t, persisted.LastAlertAt)
	assert.WithinDuration(t, now, *persisted.LastAlertAt, time.Second)
}

func TestCommitSkipsPremium(t *testing.T) {
	e, store := newTestEngine(t)
	u := freeUser(t, store)
	u.Tier = ledger.TierPremium

	e.Commit(context.Background(), u, time.Now())
	persisted, _ := store.GetUser(context.Background(), u.ID)
	assert.Equal(t, 0, persisted.AlertsToday)
}
