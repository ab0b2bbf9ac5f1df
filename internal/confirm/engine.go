package confirm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
	"github.com/radieske/arb-alert-core/internal/shared/kafka"
	"github.com/radieske/arb-alert-core/pkg/contracts/callback"
	"github.com/radieske/arb-alert-core/pkg/contracts/events"
	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

// Engine conduz o questionário de confirmação: uma bet madura por vez,
// primeiro "o match passou?", depois o resultado por classe.
type Engine struct {
	log    *zap.Logger
	store  ledger.Store
	writer *kafka.Writer // bet_resolved; nil desliga a auditoria
	table  oddsmath.ProbTable
	loc    *time.Location

	// injetável nos testes
	now func() time.Time
}

func NewEngine(log *zap.Logger, store ledger.Store, writer *kafka.Writer, table oddsmath.ProbTable, loc *time.Location) *Engine {
	return &Engine{log: log, store: store, writer: writer, table: table, loc: loc, now: time.Now}
}

// NextPrompt devolve a pergunta da próxima bet madura, ou nil se não há
// nada pendente de confirmação.
func (e *Engine) NextPrompt(ctx context.Context, userID string) (*messages.Message, error) {
	bets, err := e.store.ListReadyBets(ctx, userID, e.today())
	if err != nil {
		return nil, err
	}
	if len(bets) == 0 {
		return nil, nil
	}
	m := matchDayPrompt(bets[0])
	return &m, nil
}

// HandleMatchDay trata a resposta de "o match já aconteceu?".
func (e *Engine) HandleMatchDay(ctx context.Context, userID string, tok callback.Token) ([]messages.Message, error) {
	b, err := e.ownBet(ctx, userID, tok.ID)
	if err != nil {
		return e.staleAck(err)
	}
	switch tok.Answer {
	case "yes":
		return []messages.Message{outcomePrompt(b)}, nil
	case "no", "idk":
		return []messages.Message{setDatePrompt(b, e.today())}, nil
	}
	return e.staleAck(callback.ErrBadToken)
}

// HandleSetDate grava a nova match date. Resposta "não sei" marca a bet
// com a data de hoje para o questionário voltar amanhã.
func (e *Engine) HandleSetDate(ctx context.Context, userID string, tok callback.Token) ([]messages.Message, error) {
	b, err := e.ownBet(ctx, userID, tok.ID)
	if err != nil {
		return e.staleAck(err)
	}
	day := tok.Date
	if day.IsZero() {
		day = e.today()
	}
	if err := e.store.PostponeBet(ctx, b.ID, &day); err != nil {
		return e.staleAck(err)
	}

	out := []messages.Message{{
		Headline: "👍 Noted",
		Footer:   "I'll check back after the match.",
	}}
	return e.appendNext(ctx, userID, out), nil
}

// HandleOutcome fecha a bet com a resposta do usuário e emite o evento de
// auditoria. Bet já fechada responde com ack e segue para a próxima.
func (e *Engine) HandleOutcome(ctx context.Context, userID string, tok callback.Token) ([]messages.Message, error) {
	b, err := e.ownBet(ctx, userID, tok.ID)
	if err != nil {
		return e.staleAck(err)
	}

	a, err := e.store.GetAlert(ctx, b.AlertID)
	if err != nil {
		// alerta pode ter sido expurgado; as respostas que não dependem
		// dele continuam funcionando
		e.log.Warn("alerta da bet indisponível", zap.String("betId", b.ID), zap.Error(err))
		a = nil
	}

	res, err := resolve(b, a, tok.Answer, e.table)
	if err != nil {
		if errors.Is(err, ErrBadAnswer) {
			return e.staleAck(err)
		}
		return nil, err
	}

	updated, err := e.store.Resolve(ctx, b.ID, res.Status, res.Profit)
	if err != nil {
		return nil, err
	}
	if updated.Status != res.Status {
		// outra resposta chegou primeiro; terminal absorve
		return e.staleAck(ledger.ErrNotPending)
	}

	e.publishResolved(ctx, updated, tok.Answer, res.Profit)

	out := []messages.Message{resolvedAck(updated, res)}
	if stats, err := e.store.GetDailyStats(ctx, userID, updated.BetDate); err == nil && stats.Confirmed {
		out = append(out, dayClosedAck(stats))
	}
	return e.appendNext(ctx, userID, out), nil
}

func (e *Engine) ownBet(ctx context.Context, userID, betID string) (*ledger.UserBet, error) {
	b, err := e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ledger.ErrNotFound
	}
	if b.Status.Terminal() {
		return nil, ledger.ErrNotPending
	}
	return b, nil
}

// staleAck responde callbacks obsoletos (bet já fechada, token velho) com
// um toast benigno, sem tocar em estado.
func (e *Engine) staleAck(cause error) ([]messages.Message, error) {
	e.log.Debug("callback de confirmação obsoleto", zap.Error(cause))
	return []messages.Message{{Headline: "👌 Already taken care of"}}, nil
}

func (e *Engine) appendNext(ctx context.Context, userID string, out []messages.Message) []messages.Message {
	next, err := e.NextPrompt(ctx, userID)
	if err != nil {
		e.log.Warn("falha ao buscar próxima confirmação", zap.String("userId", userID), zap.Error(err))
		return out
	}
	if next != nil {
		out = append(out, *next)
	}
	return out
}

func (e *Engine) publishResolved(ctx context.Context, b *ledger.UserBet, answer string, profit float64) {
	if e.writer == nil {
		return
	}
	payload, err := json.Marshal(events.BetResolved{
		BetID:        b.ID,
		UserID:       b.UserID,
		Status:       string(b.Status),
		Outcome:      answer,
		ActualProfit: profit,
		TsUnixMs:     e.now().UnixMilli(),
	})
	if err != nil {
		return
	}
	if err := kafka.WriteJSON(ctx, e.writer, b.UserID, payload); err != nil {
		e.log.Warn("falha ao publicar bet_resolved", zap.String("betId", b.ID), zap.Error(err))
	}
}

func (e *Engine) today() time.Time {
	return e.now().In(e.loc)
}
