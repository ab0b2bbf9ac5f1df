package antispam

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestGuard(now *time.Time) *Guard {
	g := NewGuard(zap.NewNop(), DefaultWindow)
	g.now = func() time.Time { return *now }
	return g
}

// clique duplo: o segundo chega 200ms depois, com o primeiro ainda em voo
func TestDoubleClickBlockedInflight(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGuard(&now)

	assert.True(t, g.TryBegin("u1", "v1:ibet:arbitrage:al-1:750.00:51.40"))
	now = now.Add(200 * time.Millisecond)
	assert.False(t, g.TryBegin("u1", "v1:ibet:arbitrage:al-1:750.00:51.40"))
}

func TestWindowAfterFinish(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGuard(&now)

	assert.True(t, g.TryBegin("u1", "p"))
	g.Finish("u1", "p")

	now = now.Add(DefaultWindow - time.Millisecond)
	assert.False(t, g.TryBegin("u1", "p"), "dentro da janela continua bloqueado")

	now = now.Add(2 * time.Millisecond)
	assert.True(t, g.TryBegin("u1", "p"), "janela vencida libera")
}

// chaves distintas não se bloqueiam: payload diferente ou usuário diferente
func TestIndependentKeys(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGuard(&now)

	assert.True(t, g.TryBegin("u1", "a"))
	assert.True(t, g.TryBegin("u1", "b"))
	assert.True(t, g.TryBegin("u2", "a"))
}

func TestSweepDropsExpired(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGuard(&now)

	g.TryBegin("u1", "old")
	g.Finish("u1", "old")
	g.TryBegin("u1", "fresh")
	g.Finish("u1", "fresh")

	now = now.Add(DefaultWindow + time.Second)
	g.TryBegin("u1", "fresh") // renova o done de "fresh"
	g.Finish("u1", "fresh")

	g.sweep()

	g.mu.Lock()
	_, hasOld := g.done[key{"u1", "old"}]
	_, hasFresh := g.done[key{"u1", "fresh"}]
	g.mu.Unlock()
	assert.False(t, hasOld)
	assert.True(t, hasFresh)
}
