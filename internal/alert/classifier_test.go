package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/oddsmath"
)

type fakeStore struct {
	inserted []*Alert
}

func (s *fakeStore) InsertAlert(_ context.Context, a *Alert) error {
	s.inserted = append(s.inserted, a)
	return nil
}

func newTestClassifier(queueCap int) (*Classifier, *fakeStore) {
	store := &fakeStore{}
	dedup := NewDedupIndex(zap.NewNop(), nil, time.Hour)
	c := NewClassifier(zap.NewNop(), dedup, store, nil, oddsmath.DefaultProbTable(), queueCap)
	return c, store
}

func TestAcceptValidArbitrage(t *testing.T) {
	c, store := newTestClassifier(8)
	a := sampleAlert()

	require.NoError(t, c.Accept(context.Background(), a))

	assert.NotEmpty(t, a.ID)
	assert.NotEmpty(t, a.Fingerprint)
	require.Len(t, store.inserted, 1)

	select {
	case queued := <-c.Queue():
		assert.Equal(t, a.ID, queued.ID)
	default:
		t.Fatal("alerta aceito não foi enfileirado")
	}
}

func TestAcceptDuplicate(t *testing.T) {
	c, store := newTestClassifier(8)

	require.NoError(t, c.Accept(context.Background(), sampleAlert()))
	err := c.Accept(context.Background(), sampleAlert())

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Len(t, store.inserted, 1, "duplicado não persiste")
}

func TestAcceptUnknownBookmaker(t *testing.T) {
	c, _ := newTestClassifier(8)
	a := sampleAlert()
	a.Outcomes[0].Casino = "Shady Sportsbook"

	err := c.Accept(context.Background(), a)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAcceptRejectsBadShapes(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClassifier(8)
	a := sampleAlert()
	a.Class = "parlay"
	var vErr *ValidationError
	assert.ErrorAs(t, c.Accept(ctx, a), &vErr)

	b := sampleAlert()
	b.Outcomes = b.Outcomes[:1] // arb precisa de 2+
	assert.ErrorAs(t, c.Accept(ctx, b), &vErr)

	g := sampleAlert()
	g.Class = ClassGoodEV // good_ev precisa de exatamente 1
	assert.ErrorAs(t, c.Accept(ctx, g), &vErr)

	o := sampleAlert()
	o.Outcomes[1].Odds = 50
	assert.ErrorAs(t, c.Accept(ctx, o), &vErr)
}

func TestAcceptClassifiesMiddle(t *testing.T) {
	c, store := newTestClassifier(8)
	a := sampleAlert()
	a.Class = ClassMiddle
	a.Outcomes = nil
	sa, sb := sideOver35, sideUnder45
	a.SideA, a.SideB = &sa, &sb

	require.NoError(t, c.Accept(context.Background(), a))

	require.NotNil(t, store.inserted[0].MiddleInfo)
	assert.Equal(t, oddsmath.MiddleSafe, store.inserted[0].MiddleInfo.Type)
	assert.InDelta(t, 1.0, store.inserted[0].MiddleInfo.Gap, 1e-9)
}

func TestAcceptQueueFull(t *testing.T) {
	c, _ := newTestClassifier(1)
	ctx := context.Background()

	require.NoError(t, c.Accept(ctx, sampleAlert()))

	b := sampleAlert()
	b.EventID = "EV_456" // fingerprint distinto
	assert.ErrorIs(t, c.Accept(ctx, b), ErrQueueFull)
}

// fila cheia não pode deixar resíduo no dedup: o reenvio do produtor depois
// do dreno tem que entrar, não cair em duplicado
func TestAcceptQueueFullAllowsResend(t *testing.T) {
	c, _ := newTestClassifier(1)
	ctx := context.Background()

	require.NoError(t, c.Accept(ctx, sampleAlert()))

	b := sampleAlert()
	b.EventID = "EV_456"
	require.ErrorIs(t, c.Accept(ctx, b), ErrQueueFull)

	<-c.Queue() // dispatcher drena

	b2 := sampleAlert()
	b2.EventID = "EV_456"
	assert.NoError(t, c.Accept(ctx, b2))
}

func TestNormalizeBookmakerAliases(t *testing.T) {
	got, err := NormalizeBookmaker("  bet 365 ")
	require.NoError(t, err)
	assert.Equal(t, "bet365", got)

	got, err = NormalizeBookmaker("SIA")
	require.NoError(t, err)
	assert.Equal(t, "Sports Interaction", got)

	_, err = NormalizeBookmaker("totally made up")
	assert.Error(t, err)
}
