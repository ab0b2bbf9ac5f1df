package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/botport"
	"github.com/radieske/arb-alert-core/internal/eligibility"
	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string // user ids, na ordem
	fails map[string]int
	err   error
}

func (f *fakeSender) Send(_ context.Context, userID string, _ messages.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := f.fails[userID]; n > 0 {
		f.fails[userID] = n - 1
		return f.err
	}
	f.sent = append(f.sent, userID)
	return nil
}

func newTestDispatcher(t *testing.T, store ledger.Store, sender botport.Sender) *Dispatcher {
	t.Helper()
	elig := eligibility.NewEngine(zap.NewNop(), store, eligibility.Limits{
		FreeDailyCap:  5,
		FreeSpacing:   2 * time.Hour,
		FreeMaxArbPct: 2.5,
	})
	d := New(zap.NewNop(), store, elig, sender, oddsmath.DefaultProbTable(), nil,
		Options{GlobalRate: 1000, UserRate: 1000})
	d.now = func() time.Time { return time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC) }
	return d
}

func dispatchArb(pct float64) *alert.Alert {
	return &alert.Alert{
		ID:     "al-1",
		Class:  alert.ClassArbitrage,
		Match:  "A vs B",
		ArbPct: pct,
		Outcomes: []alert.Outcome{
			{Casino: "bet365", Selection: "A", Odds: 110},
			{Casino: "Pinnacle", Selection: "B", Odds: 115},
		},
	}
}

func TestFanOutDeliversAndCommits(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	_, err := store.GetOrCreateUser(ctx, "u1")
	require.NoError(t, err)

	sender := &fakeSender{}
	d := newTestDispatcher(t, store, sender)
	d.fanOut(ctx, dispatchArb(2.0))

	assert.Equal(t, []string{"u1"}, sender.sent)

	u, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.AlertsToday, "entrega registra o throttle")
}

// middle é premium: o free não recebe nada e o throttle fica intocado
func TestFanOutSkipsIneligible(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	_, err := store.GetOrCreateUser(ctx, "u1")
	require.NoError(t, err)

	sender := &fakeSender{}
	d := newTestDispatcher(t, store, sender)
	d.fanOut(ctx, &alert.Alert{
		ID:    "al-2",
		Class: alert.ClassMiddle,
		Match: "A vs B",
		SideA: &oddsmath.MiddleSide{Bookmaker: "bet365", Selection: "Over 2.5", Line: 2.5, Odds: -105, Market: "Totals"},
		SideB: &oddsmath.MiddleSide{Bookmaker: "Pinnacle", Selection: "Under 3.5", Line: 3.5, Odds: 120, Market: "Totals"},
	})

	assert.Empty(t, sender.sent)
	u, _ := store.GetUser(ctx, "u1")
	assert.Equal(t, 0, u.AlertsToday)
}

func TestDeliverRetriesTransientFailure(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	u, err := store.GetOrCreateUser(ctx, "u1")
	require.NoError(t, err)

	sender := &fakeSender{fails: map[string]int{"u1": 1}, err: errors.New("timeout")}
	d := newTestDispatcher(t, store, sender)

	ok := d.deliver(ctx, dispatchArb(2.0), u)
	assert.True(t, ok, "segunda tentativa entrega")
	assert.Equal(t, []string{"u1"}, sender.sent)
}

func TestDeliverGivesUpAfterRetries(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	u, err := store.GetOrCreateUser(ctx, "u1")
	require.NoError(t, err)

	sender := &fakeSender{fails: map[string]int{"u1": maxSendAttempts}, err: errors.New("timeout")}
	d := newTestDispatcher(t, store, sender)

	ok := d.deliver(ctx, dispatchArb(2.0), u)
	assert.False(t, ok)
	assert.Empty(t, sender.sent)

	got, _ := store.GetUser(ctx, "u1")
	assert.True(t, got.Active, "falha transiente não desativa")
}

func TestDeliverBlockedDeactivates(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	u, err := store.GetOrCreateUser(ctx, "u1")
	require.NoError(t, err)

	sender := &fakeSender{fails: map[string]int{"u1": 1}, err: botport.ErrUserBlocked}
	d := newTestDispatcher(t, store, sender)

	ok := d.deliver(ctx, dispatchArb(2.0), u)
	assert.False(t, ok)
	assert.Empty(t, sender.sent, "bloqueio não retenta")

	got, _ := store.GetUser(ctx, "u1")
	assert.False(t, got.Active)
}

func TestDeliverDropsRoundedAway(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	u, err := store.GetOrCreateUser(ctx, "u1")
	require.NoError(t, err)
	u.RoundingLevel = 5

	a := dispatchArb(0.97)
	a.Outcomes = []alert.Outcome{
		{Casino: "bet365", Selection: "Over", Odds: 100},
		{Casino: "Pinnacle", Selection: "Under", Odds: 102},
	}

	sender := &fakeSender{}
	d := newTestDispatcher(t, store, sender)
	ok := d.deliver(ctx, a, u)
	assert.False(t, ok)
	assert.Empty(t, sender.sent)
}

func TestRunDrainsQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := ledger.NewMemoryStore()
	_, err := store.GetOrCreateUser(ctx, "u1")
	require.NoError(t, err)

	queue := make(chan *alert.Alert, 1)
	sender := &fakeSender{}
	elig := eligibility.NewEngine(zap.NewNop(), store, eligibility.Limits{FreeDailyCap: 5, FreeSpacing: 0, FreeMaxArbPct: 2.5})
	d := New(zap.NewNop(), store, elig, sender, oddsmath.DefaultProbTable(), queue,
		Options{GlobalRate: 1000, UserRate: 1000})
	d.now = func() time.Time { return time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC) }

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	queue <- dispatchArb(2.0)
	close(queue)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run não encerrou com a fila fechada")
	}
	assert.Equal(t, []string{"u1"}, sender.sent)
}
