package alert

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Índice de dedup de fingerprints em duas camadas: mapa TTL em memória na
// frente, Redis SETNX atrás (sobrevive a restart do processo). Redis fora
// do ar opera fail-open: preferimos um duplicado a perder um alerta.

type DedupIndex struct {
	log *zap.Logger
	rdb *redis.Client // opcional
	ttl time.Duration

	mu   sync.Mutex
	seen map[string]time.Time // fingerprint → expiração
}

func NewDedupIndex(log *zap.Logger, rdb *redis.Client, ttl time.Duration) *DedupIndex {
	return &DedupIndex{
		log:  log,
		rdb:  rdb,
		ttl:  ttl,
		seen: make(map[string]time.Time),
	}
}

// Seen marca o fingerprint e responde se ele já tinha sido visto dentro da
// janela. A primeira chamada de cada fingerprint retorna false.
func (d *DedupIndex) Seen(ctx context.Context, fingerprint string) bool {
	now := time.Now()

	d.mu.Lock()
	d.prune(now)
	if exp, ok := d.seen[fingerprint]; ok && exp.After(now) {
		d.mu.Unlock()
		return true
	}
	d.seen[fingerprint] = now.Add(d.ttl)
	d.mu.Unlock()

	if d.rdb == nil {
		return false
	}

	ok, err := d.rdb.SetNX(ctx, "alert:fp:"+fingerprint, 1, d.ttl).Result()
	if err != nil {
		// fail-open no dedup persistente
		d.log.Warn("dedup redis unavailable, failing open", zap.Error(err))
		return false
	}
	return !ok
}

// Forget desfaz a marca de um fingerprint. Usado quando a admissão falha
// depois do dedup (fila cheia): o produtor pode reenviar sem cair em 202.
func (d *DedupIndex) Forget(ctx context.Context, fingerprint string) {
	d.mu.Lock()
	delete(d.seen, fingerprint)
	d.mu.Unlock()

	if d.rdb == nil {
		return
	}
	if err := d.rdb.Del(ctx, "alert:fp:"+fingerprint).Err(); err != nil {
		d.log.Warn("dedup redis del failed", zap.Error(err))
	}
}

// prune remove entradas expiradas; chamado sob o lock.
func (d *DedupIndex) prune(now time.Time) {
	for fp, exp := range d.seen {
		if exp.Before(now) {
			delete(d.seen, fp)
		}
	}
}
