package antispam

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/shared/metrics"
)

const (
	// DefaultWindow é a janela de supressão pós-clique.
	DefaultWindow = 2 * time.Second

	sweepInterval = 5 * time.Second
)

type key struct {
	userID  string
	payload string
}

// Guard derruba cliques repetidos no mesmo callback: um em voo por
// (usuário, payload) e uma janela curta depois que o primeiro completa.
type Guard struct {
	log    *zap.Logger
	window time.Duration

	mu       sync.Mutex
	inflight map[key]struct{}
	done     map[key]time.Time

	now func() time.Time
}

func NewGuard(log *zap.Logger, window time.Duration) *Guard {
	return &Guard{
		log:      log,
		window:   window,
		inflight: make(map[key]struct{}),
		done:     make(map[key]time.Time),
		now:      time.Now,
	}
}

// TryBegin reserva o processamento do callback. false = duplicado; o
// chamador responde com toast de "processing" e não executa nada.
func (g *Guard) TryBegin(userID, payload string) bool {
	k := key{userID, payload}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[k]; busy {
		metrics.GuardBlocked.WithLabelValues("inflight").Inc()
		return false
	}
	if t, ok := g.done[k]; ok && g.now().Sub(t) < g.window {
		metrics.GuardBlocked.WithLabelValues("window").Inc()
		return false
	}
	g.inflight[k] = struct{}{}
	return true
}

// Finish libera o slot e abre a janela de supressão.
func (g *Guard) Finish(userID, payload string) {
	k := key{userID, payload}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, k)
	g.done[k] = g.now()
}

// Sweep roda o expurgo periódico das entradas completadas. Bloqueia até o
// contexto encerrar; chamar numa goroutine no main.
func (g *Guard) Sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *Guard) sweep() {
	cutoff := g.now().Add(-g.window)
	g.mu.Lock()
	defer g.mu.Unlock()
	for k, t := range g.done {
		if t.Before(cutoff) {
			delete(g.done, k)
		}
	}
}
