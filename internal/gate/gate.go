package gate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/botport"
	"github.com/radieske/arb-alert-core/internal/confirm"
	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/internal/shared/metrics"
	"github.com/radieske/arb-alert-core/pkg/contracts/callback"
	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

// Gate bloqueia interações enquanto houver confirmações maduras: qualquer
// evento fora do fluxo de confirmação é desviado para o questionário.
type Gate struct {
	log     *zap.Logger
	store   ledger.Store
	confirm *confirm.Engine
	loc     *time.Location

	now func() time.Time
}

func New(log *zap.Logger, store ledger.Store, confirmEng *confirm.Engine, loc *time.Location) *Gate {
	return &Gate{log: log, store: store, confirm: confirmEng, loc: loc, now: time.Now}
}

// Intercept decide se o evento passa. Quando desvia, devolve as mensagens
// a enviar no lugar da resposta normal.
func (g *Gate) Intercept(ctx context.Context, ev botport.InboundEvent) (diverted bool, msgs []messages.Message, err error) {
	ready, err := g.store.ReadyCount(ctx, ev.UserID, g.now().In(g.loc))
	if err != nil {
		// ledger fora do ar não pode travar o usuário
		g.log.Warn("gate sem acesso ao ledger, deixando passar", zap.Error(err))
		return false, nil, nil
	}
	if ready == 0 {
		return false, nil, nil
	}

	if ev.Type == botport.EventCallback {
		if tok, perr := callback.Parse(ev.Payload); perr == nil && tok.IsConfirmationFlow() {
			return false, nil, nil
		}
	}

	metrics.GateDiverted.Inc()
	g.log.Info("interação desviada para confirmação",
		zap.String("userId", ev.UserID), zap.Int("ready", ready))

	out := []messages.Message{{
		Headline: "⏸️ Hold on",
		Footer:   "Let's settle your open bets first.",
	}}
	next, err := g.confirm.NextPrompt(ctx, ev.UserID)
	if err != nil {
		return true, out, nil
	}
	if next != nil {
		out = append(out, *next)
	}
	return true, out, nil
}
