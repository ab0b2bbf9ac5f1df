package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/antispam"
	"github.com/radieske/arb-alert-core/internal/botport"
	"github.com/radieske/arb-alert-core/internal/confirm"
	"github.com/radieske/arb-alert-core/internal/gate"
	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/internal/shared/kafka"
	"github.com/radieske/arb-alert-core/pkg/contracts/callback"
	"github.com/radieske/arb-alert-core/pkg/contracts/events"
	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

// EventHandler processa as interações do usuário vindas do bridge:
// guard de double-click → gate de confirmação → roteamento por tipo.
type EventHandler struct {
	log     *zap.Logger
	store   ledger.Store
	confirm *confirm.Engine
	gate    *gate.Gate
	guard   *antispam.Guard
	writer  *kafka.Writer // tópico bet_recorded; nil desliga auditoria
	loc     *time.Location

	now func() time.Time
}

func NewEventHandler(log *zap.Logger, store ledger.Store, confirmEng *confirm.Engine,
	g *gate.Gate, guard *antispam.Guard, writer *kafka.Writer, loc *time.Location) *EventHandler {

	return &EventHandler{
		log: log, store: store, confirm: confirmEng,
		gate: g, guard: guard, writer: writer, loc: loc,
		now: time.Now,
	}
}

// Handle devolve as mensagens de resposta ao evento. Nunca propaga erro
// pro bridge: falha vira mensagem de desculpa.
func (h *EventHandler) Handle(ctx context.Context, ev botport.InboundEvent) []messages.Message {
	if ev.Type == botport.EventCallback {
		if !h.guard.TryBegin(ev.UserID, ev.Payload) {
			return []messages.Message{{Headline: "⏳ Processing..."}}
		}
		defer h.guard.Finish(ev.UserID, ev.Payload)
	}

	diverted, msgs, err := h.gate.Intercept(ctx, ev)
	if err != nil {
		h.log.Error("gate falhou", zap.String("userId", ev.UserID), zap.Error(err))
		return h.oops()
	}
	if diverted {
		return msgs
	}

	switch ev.Type {
	case botport.EventCallback:
		return h.handleCallback(ctx, ev)
	case botport.EventCommand:
		return h.handleCommand(ctx, ev)
	default:
		return []messages.Message{{
			Headline: "🤖 I only speak buttons",
			Footer:   "Use the buttons under each alert, or /stats for today's summary.",
		}}
	}
}

func (h *EventHandler) handleCallback(ctx context.Context, ev botport.InboundEvent) []messages.Message {
	tok, err := callback.Parse(ev.Payload)
	if err != nil {
		// token velho ou corrompido: toast benigno, estado intacto
		h.log.Debug("callback inválido", zap.String("userId", ev.UserID), zap.Error(err))
		return []messages.Message{{Headline: "🤷 That button has expired"}}
	}

	var (
		msgs []messages.Message
		herr error
	)
	switch tok.Kind {
	case callback.KindIBet:
		msgs, herr = h.handleIBet(ctx, ev.UserID, tok)
	case callback.KindUndo:
		msgs, herr = h.handleUndo(ctx, ev.UserID, tok)
	case callback.KindMatchDay:
		msgs, herr = h.confirm.HandleMatchDay(ctx, ev.UserID, tok)
	case callback.KindSetDate:
		msgs, herr = h.confirm.HandleSetDate(ctx, ev.UserID, tok)
	case callback.KindOutcome:
		msgs, herr = h.confirm.HandleOutcome(ctx, ev.UserID, tok)
	case callback.KindNoop:
		return nil
	}
	if herr != nil {
		h.log.Error("callback falhou",
			zap.String("userId", ev.UserID), zap.String("kind", string(tok.Kind)), zap.Error(herr))
		return h.oops()
	}
	return msgs
}

// handleIBet grava o clique no ledger. Idempotente por (usuário, evento,
// classe): clique repetido devolve a bet original.
func (h *EventHandler) handleIBet(ctx context.Context, userID string, tok callback.Token) ([]messages.Message, error) {
	a, err := h.store.GetAlert(ctx, tok.ID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return []messages.Message{{Headline: "🤷 That alert is gone"}}, nil
		}
		return nil, err
	}
	if _, err := h.store.GetOrCreateUser(ctx, userID); err != nil {
		return nil, err
	}

	eventKey := a.EventID
	if eventKey == "" {
		eventKey = a.Fingerprint
	}
	now := h.now().In(h.loc)
	var matchDate *time.Time
	if a.CommenceAt != nil {
		d := a.CommenceAt.In(h.loc)
		matchDate = &d
	}

	res, err := h.store.RecordClick(ctx, ledger.ClickParams{
		UserID:         userID,
		AlertID:        a.ID,
		Class:          a.Class,
		EventHash:      ledger.EventHash(a.Class, eventKey),
		BetDate:        now,
		MatchName:      a.Match,
		League:         a.League,
		MatchDate:      matchDate,
		TotalStake:     tok.Stake,
		ExpectedProfit: tok.Profit,
	})
	if err != nil {
		return nil, err
	}

	if res.Already {
		return []messages.Message{{
			Headline: "📌 Already on your ledger",
			Footer:   "You recorded this one before.",
			Actions: []messages.Action{
				{Kind: messages.ActionCallback, Label: "↩️ Oops, remove it", Token: callback.Undo(res.BetID)},
			},
		}}, nil
	}

	if err := h.store.IncrementClassCounter(ctx, userID, a.Class); err != nil {
		h.log.Warn("contador de classe não incrementado", zap.String("userId", userID), zap.Error(err))
	}
	h.publishRecorded(ctx, res.BetID, userID, a, tok, now)

	return []messages.Message{{
		Headline: "✅ Bet recorded",
		Lines: []messages.Line{
			{Icon: "⚽", Label: "Match", Value: a.Match},
			{Icon: "💵", Label: "Stake", Value: fmt.Sprintf("$%.2f", tok.Stake)},
			{Icon: "📈", Label: "Expected", Value: fmt.Sprintf("$%.2f", tok.Profit)},
		},
		Footer: "I'll check the result with you after the match.",
		Actions: []messages.Action{
			{Kind: messages.ActionCallback, Label: "↩️ Oops, mistake", Token: callback.Undo(res.BetID)},
		},
	}}, nil
}

func (h *EventHandler) handleUndo(ctx context.Context, userID string, tok callback.Token) ([]messages.Message, error) {
	err := h.store.Undo(ctx, userID, tok.ID)
	switch {
	case errors.Is(err, ledger.ErrNotPending):
		return []messages.Message{{Headline: "🔒 Too late, that one is already settled"}}, nil
	case errors.Is(err, ledger.ErrNotFound):
		return []messages.Message{{Headline: "🤷 Nothing to remove"}}, nil
	case err != nil:
		return nil, err
	}
	return []messages.Message{{Headline: "🗑️ Removed from your ledger"}}, nil
}

func (h *EventHandler) handleCommand(ctx context.Context, ev botport.InboundEvent) []messages.Message {
	cmd := strings.Fields(strings.TrimSpace(ev.Payload))
	if len(cmd) == 0 {
		return h.oops()
	}
	switch cmd[0] {
	case "/start":
		if _, err := h.store.GetOrCreateUser(ctx, ev.UserID); err != nil {
			h.log.Error("criar usuário no /start", zap.String("userId", ev.UserID), zap.Error(err))
			return h.oops()
		}
		return []messages.Message{{
			Headline: "👋 Welcome!",
			Lines: []messages.Line{
				{Icon: "💰", Label: "Alerts", Value: "arbitrage, middles and +EV"},
				{Icon: "✍️", Label: "Tracking", Value: "tap I BET to log what you placed"},
				{Icon: "📋", Label: "Follow-up", Value: "I'll confirm results with you"},
			},
			Footer: "Alerts start arriving as soon as opportunities show up.",
		}}
	case "/stats":
		return h.handleStats(ctx, ev.UserID)
	}
	return []messages.Message{{
		Headline: "🤔 Unknown command",
		Footer:   "Try /stats for today's summary.",
	}}
}

func (h *EventHandler) handleStats(ctx context.Context, userID string) []messages.Message {
	today := h.now().In(h.loc)
	stats, err := h.store.GetDailyStats(ctx, userID, today)
	if errors.Is(err, ledger.ErrNotFound) {
		return []messages.Message{{Headline: "📊 No bets recorded today"}}
	}
	if err != nil {
		h.log.Error("stats indisponíveis", zap.String("userId", userID), zap.Error(err))
		return h.oops()
	}
	state := "⏳ pending confirmation"
	if stats.Confirmed {
		state = "✅ all confirmed"
	}
	return []messages.Message{{
		Headline: "📊 Today: " + today.Format("Jan 2"),
		Lines: []messages.Line{
			{Icon: "🎫", Label: "Bets", Value: fmt.Sprintf("%d", stats.TotalBets)},
			{Icon: "💵", Label: "Staked", Value: fmt.Sprintf("$%.2f", stats.TotalStaked)},
			{Icon: "💰", Label: "P/L", Value: fmt.Sprintf("$%.2f", stats.TotalProfit)},
		},
		Footer: state,
	}}
}

// publishRecorded emite o evento de auditoria do clique; falha não bloqueia.
func (h *EventHandler) publishRecorded(ctx context.Context, betID, userID string, a *alert.Alert, tok callback.Token, now time.Time) {
	if h.writer == nil {
		return
	}
	eventKey := a.EventID
	if eventKey == "" {
		eventKey = a.Fingerprint
	}
	payload, _ := json.Marshal(events.BetRecorded{
		BetID:          betID,
		UserID:         userID,
		AlertID:        a.ID,
		Class:          string(a.Class),
		EventHash:      ledger.EventHash(a.Class, eventKey),
		TotalStake:     tok.Stake,
		ExpectedProfit: tok.Profit,
		BetDate:        now.Format("2006-01-02"),
		TsUnixMs:       now.UnixMilli(),
	})
	if err := kafka.WriteJSON(ctx, h.writer, userID, payload); err != nil {
		h.log.Warn("falha ao publicar bet_recorded", zap.String("betId", betID), zap.Error(err))
	}
}

func (h *EventHandler) oops() []messages.Message {
	return []messages.Message{{Headline: "😵 Something went wrong, try again"}}
}
