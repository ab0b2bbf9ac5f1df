package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/intake"
	"github.com/radieske/arb-alert-core/internal/shared/config"
	"github.com/radieske/arb-alert-core/internal/shared/logger"
	"github.com/radieske/arb-alert-core/internal/shared/metrics"
)

// Simulador de produtores: gera oportunidades sintéticas e as envia pro
// intake do core, útil pra exercitar o pipeline sem scanner real.

var (
	alertsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simulator_alerts_sent_total",
		Help: "Alertas sintéticos enviados por classe e status HTTP",
	}, []string{"class", "status"})
)

// Catálogo fixo de partidas simuladas
var matchCatalog = []struct {
	EventID string
	League  string
	Match   string
}{
	{"SIM_001", "NBA", "Lakers vs Celtics"},
	{"SIM_002", "NHL", "Maple Leafs vs Canadiens"},
	{"SIM_003", "EPL", "Arsenal vs Chelsea"},
	{"SIM_004", "NFL", "Chiefs vs Bills"},
}

var books = []string{"bet365", "Pinnacle", "Stake", "BetVictor", "Coolbet"}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	coreURL := os.Getenv("CORE_URL")
	if coreURL == "" {
		coreURL = "http://localhost:8080"
	}
	interval := 5 * time.Second
	if v := os.Getenv("SIM_INTERVAL_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			interval = d
		}
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 5 * time.Second}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Info("producer-simulator running",
		zap.String("core", coreURL), zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("simulator stopped")
			return
		case <-ticker.C:
			class, env := randomAlert(rng)
			send(ctx, log, client, coreURL, class, env)
		}
	}
}

// randomAlert sorteia uma classe e gera um envelope plausível.
func randomAlert(rng *rand.Rand) (string, intake.AlertEnvelope) {
	m := matchCatalog[rng.Intn(len(matchCatalog))]
	commence := time.Now().Add(time.Duration(rng.Intn(48)) * time.Hour)
	bookA := books[rng.Intn(len(books))]
	bookB := books[rng.Intn(len(books))]

	switch rng.Intn(3) {
	case 0:
		// par de odds americanas com inverso < 1 na maioria dos sorteios
		oddsA := 100 + rng.Intn(60)
		oddsB := 100 + rng.Intn(60)
		return "arbitrage", intake.AlertEnvelope{
			EventID:      m.EventID,
			League:       m.League,
			Match:        m.Match,
			Market:       "Moneyline",
			CommenceTime: commence.Format(time.RFC3339),
			ArbPct:       1 + rng.Float64()*3,
			Outcomes: []intake.OutcomeDTO{
				{Casino: bookA, Selection: "Home", Odds: oddsA},
				{Casino: bookB, Selection: "Away", Odds: oddsB},
			},
		}
	case 1:
		line := 2.5 + float64(rng.Intn(4))
		return "middle", intake.AlertEnvelope{
			EventID:      m.EventID,
			League:       m.League,
			Match:        m.Match,
			CommenceTime: commence.Format(time.RFC3339),
			SideA: &intake.SideDTO{Bookmaker: bookA, Selection: fmt.Sprintf("Over %.1f", line),
				Line: line, Odds: -105, Market: "Total Points"},
			SideB: &intake.SideDTO{Bookmaker: bookB, Selection: fmt.Sprintf("Under %.1f", line+1),
				Line: line + 1, Odds: 110, Market: "Total Points"},
		}
	default:
		return "good_ev", intake.AlertEnvelope{
			EventID:      m.EventID,
			League:       m.League,
			Match:        m.Match,
			Market:       "Moneyline",
			CommenceTime: commence.Format(time.RFC3339),
			EVPct:        2 + rng.Float64()*6,
			Outcomes: []intake.OutcomeDTO{
				{Casino: bookA, Selection: "Home", Odds: 120 + rng.Intn(80)},
			},
		}
	}
}

func send(ctx context.Context, log *zap.Logger, client *http.Client, coreURL, class string, env intake.AlertEnvelope) {
	body, _ := json.Marshal(env)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, coreURL+"/alert/"+class, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		alertsSent.WithLabelValues(class, "error").Inc()
		log.Warn("send failed", zap.String("class", class), zap.Error(err))
		return
	}
	defer res.Body.Close()
	alertsSent.WithLabelValues(class, fmt.Sprintf("%d", res.StatusCode)).Inc()
	log.Info("alert sent", zap.String("class", class), zap.Int("status", res.StatusCode))
}
