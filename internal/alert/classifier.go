package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/oddsmath"
	"github.com/radieske/arb-alert-core/internal/shared/kafka"
	"github.com/radieske/arb-alert-core/internal/shared/metrics"
	"github.com/radieske/arb-alert-core/pkg/contracts/events"
)

// Classifier normaliza, valida, deduplica e enfileira alertas aceitos.
// Fica entre o intake HTTP e os workers de despacho.

var (
	ErrDuplicate = errors.New("duplicate alert")
	ErrQueueFull = errors.New("alert queue full")
)

// ValidationError marca payload malformado; o intake responde 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "malformed alert: " + e.Reason }

func badAlert(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// budget de referência para a classificação safe/risky de middles
// (o sinal dos cenários não depende do budget)
const refBudget = 100.0

// Store é o subconjunto do ledger que o classificador usa.
type Store interface {
	InsertAlert(ctx context.Context, a *Alert) error
}

type Classifier struct {
	log    *zap.Logger
	dedup  *DedupIndex
	store  Store
	writer *kafka.Writer // tópico alert_accepted; nil desliga auditoria
	table  oddsmath.ProbTable
	queue  chan *Alert
}

func NewClassifier(log *zap.Logger, dedup *DedupIndex, store Store, writer *kafka.Writer, table oddsmath.ProbTable, queueCap int) *Classifier {
	return &Classifier{
		log:    log,
		dedup:  dedup,
		store:  store,
		writer: writer,
		table:  table,
		queue:  make(chan *Alert, queueCap),
	}
}

// Queue é consumida pelos workers do dispatcher.
func (c *Classifier) Queue() <-chan *Alert { return c.queue }

// Accept processa um alerta recém-chegado. Retorna ErrDuplicate para
// fingerprint repetido, *ValidationError para payload inválido e
// ErrQueueFull quando a fila está cheia (back-pressure pro produtor).
func (c *Classifier) Accept(ctx context.Context, a *Alert) error {
	if err := c.normalize(a); err != nil {
		metrics.IntakeMalformed.Inc()
		return err
	}

	a.ID = uuid.NewString()
	a.ReceivedAt = time.Now()
	a.Fingerprint = Fingerprint(a)

	if c.dedup.Seen(ctx, a.Fingerprint) {
		metrics.IntakeDuplicate.Inc()
		return ErrDuplicate
	}

	if a.Class == ClassMiddle {
		res, err := oddsmath.ClassifyMiddle(*a.SideA, *a.SideB, refBudget, 0, oddsmath.RoundNearest, c.table)
		if err != nil {
			metrics.IntakeMalformed.Inc()
			return badAlert("middle classification: %v", err)
		}
		a.MiddleInfo = &MiddleInfo{Type: res.Type, Gap: res.Gap, Prob: res.Prob}
	}

	if err := c.store.InsertAlert(ctx, a); err != nil {
		return fmt.Errorf("persist alert: %w", err)
	}

	c.publish(ctx, a)

	select {
	case c.queue <- a:
	default:
		// desmarca o fingerprint: o produtor reenvia quando a fila esvaziar
		// e não pode bater em 202 por causa de uma admissão que falhou
		c.dedup.Forget(ctx, a.Fingerprint)
		metrics.IntakeOverloaded.Inc()
		return ErrQueueFull
	}

	metrics.IntakeAccepted.WithLabelValues(string(a.Class)).Inc()
	c.log.Info("alert accepted",
		zap.String("alertId", a.ID),
		zap.String("class", string(a.Class)),
		zap.String("fingerprint", a.Fingerprint),
	)
	return nil
}

// normalize resolve bookmakers para a forma canônica e valida a estrutura
// mínima de cada classe.
func (c *Classifier) normalize(a *Alert) error {
	if !a.Class.Valid() {
		return badAlert("unknown class %q", a.Class)
	}
	if a.Match == "" {
		return badAlert("missing match")
	}

	for i := range a.Outcomes {
		name, err := NormalizeBookmaker(a.Outcomes[i].Casino)
		if err != nil {
			return badAlert("outcome %d: %v", i, err)
		}
		a.Outcomes[i].Casino = name
		if a.Outcomes[i].Odds > -100 && a.Outcomes[i].Odds < 100 {
			return badAlert("outcome %d: invalid odds %d", i, a.Outcomes[i].Odds)
		}
	}

	switch a.Class {
	case ClassArbitrage:
		if len(a.Outcomes) < 2 {
			return badAlert("arbitrage needs at least 2 outcomes, got %d", len(a.Outcomes))
		}
	case ClassGoodEV:
		if len(a.Outcomes) != 1 {
			return badAlert("good_ev needs exactly 1 outcome, got %d", len(a.Outcomes))
		}
	case ClassMiddle:
		if a.SideA == nil || a.SideB == nil {
			return badAlert("middle needs side_a and side_b")
		}
		for _, side := range []*oddsmath.MiddleSide{a.SideA, a.SideB} {
			name, err := NormalizeBookmaker(side.Bookmaker)
			if err != nil {
				return badAlert("%v", err)
			}
			side.Bookmaker = name
		}
	}
	return nil
}

// publish emite o evento de auditoria; falha de Kafka não bloqueia o fluxo.
func (c *Classifier) publish(ctx context.Context, a *Alert) {
	if c.writer == nil {
		return
	}
	ev := events.AlertAccepted{
		AlertID:     a.ID,
		EventID:     a.EventID,
		Class:       string(a.Class),
		Fingerprint: a.Fingerprint,
		League:      a.League,
		Match:       a.Match,
		Pct:         a.Pct(),
		ReceivedAt:  a.ReceivedAt,
	}
	b, _ := json.Marshal(ev)
	if err := kafka.WriteJSON(ctx, c.writer, a.ID, b); err != nil {
		c.log.Warn("publish alert_accepted", zap.Error(err))
	}
}
