package dispatch

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/botport"
	"github.com/radieske/arb-alert-core/internal/eligibility"
	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
	"github.com/radieske/arb-alert-core/internal/shared/metrics"
)

const (
	maxSendAttempts = 3
	baseBackoff     = 250 * time.Millisecond
)

// Options parametriza o fan-out.
type Options struct {
	GlobalRate float64 // mensagens/s no agregado
	UserRate   float64 // mensagens/s por usuário
}

// Dispatcher consome a fila do classifier e entrega o alerta personalizado
// a cada usuário elegível, na ordem de chegada.
type Dispatcher struct {
	log    *zap.Logger
	store  ledger.Store
	elig   *eligibility.Engine
	sender botport.Sender
	table  oddsmath.ProbTable
	queue  <-chan *alert.Alert

	global   *rate.Limiter
	mu       sync.Mutex
	perUser  map[string]*rate.Limiter
	userRate rate.Limit

	now func() time.Time
}

func New(log *zap.Logger, store ledger.Store, elig *eligibility.Engine,
	sender botport.Sender, table oddsmath.ProbTable, queue <-chan *alert.Alert, opts Options) *Dispatcher {

	return &Dispatcher{
		log:      log,
		store:    store,
		elig:     elig,
		sender:   sender,
		table:    table,
		queue:    queue,
		global:   rate.NewLimiter(rate.Limit(opts.GlobalRate), int(opts.GlobalRate)+1),
		perUser:  make(map[string]*rate.Limiter),
		userRate: rate.Limit(opts.UserRate),
		now:      time.Now,
	}
}

// Run processa a fila até o contexto encerrar. Um único loop preserva a
// ordem de entrega por usuário.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-d.queue:
			if !ok {
				return
			}
			d.fanOut(ctx, a)
		}
	}
}

func (d *Dispatcher) fanOut(ctx context.Context, a *alert.Alert) {
	users, err := d.store.ListActiveUsers(ctx)
	if err != nil {
		d.log.Error("fan-out sem lista de usuários", zap.String("alertId", a.ID), zap.Error(err))
		return
	}
	now := d.now()
	sent := 0
	for _, u := range users {
		if reason := d.elig.Check(u, a, now); reason != eligibility.ReasonOK {
			d.log.Debug("alerta pulado",
				zap.String("alertId", a.ID), zap.String("userId", u.ID),
				zap.String("reason", string(reason)))
			continue
		}
		if d.deliver(ctx, a, u) {
			d.elig.Commit(ctx, u, d.now())
			sent++
		}
	}
	d.log.Info("fan-out concluído",
		zap.String("alertId", a.ID), zap.String("class", string(a.Class)),
		zap.Int("sent", sent), zap.Int("users", len(users)))
}

func (d *Dispatcher) deliver(ctx context.Context, a *alert.Alert, u *ledger.User) bool {
	r, err := render(a, u, d.table)
	if err != nil {
		if errors.Is(err, oddsmath.ErrRoundedAway) {
			// o arredondamento do usuário comeu o profit: não alertar
			metrics.DispatchDropped.WithLabelValues("rounding").Inc()
			d.log.Debug("profit zerado pelo arredondamento",
				zap.String("alertId", a.ID), zap.String("userId", u.ID))
			return false
		}
		d.log.Warn("falha ao personalizar alerta",
			zap.String("alertId", a.ID), zap.String("userId", u.ID), zap.Error(err))
		return false
	}

	if err := d.global.Wait(ctx); err != nil {
		return false
	}
	if err := d.userLimiter(u.ID).Wait(ctx); err != nil {
		return false
	}

	backoff := baseBackoff
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		err := d.sender.Send(ctx, u.ID, r.Msg)
		if err == nil {
			metrics.DispatchSent.WithLabelValues(string(a.Class)).Inc()
			return true
		}
		if errors.Is(err, botport.ErrUserBlocked) {
			metrics.DispatchDropped.WithLabelValues("blocked").Inc()
			d.log.Info("usuário bloqueou o bot, desativando", zap.String("userId", u.ID))
			if derr := d.store.DeactivateUser(ctx, u.ID); derr != nil {
				d.log.Warn("falha ao desativar usuário", zap.String("userId", u.ID), zap.Error(derr))
			}
			return false
		}
		if attempt == maxSendAttempts {
			break
		}
		metrics.DispatchRetried.Inc()
		d.log.Warn("envio falhou, retentando",
			zap.String("userId", u.ID), zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff + time.Duration(rand.Int63n(int64(backoff/2)))):
		}
		backoff *= 2
	}
	metrics.DispatchDropped.WithLabelValues("exhausted").Inc()
	d.log.Error("envio descartado após retentativas",
		zap.String("alertId", a.ID), zap.String("userId", u.ID))
	return false
}

func (d *Dispatcher) userLimiter(userID string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.perUser[userID]
	if !ok {
		l = rate.NewLimiter(d.userRate, 1)
		d.perUser[userID] = l
	}
	return l
}
