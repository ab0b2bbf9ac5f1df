package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/antispam"
	"github.com/radieske/arb-alert-core/internal/botport"
	"github.com/radieske/arb-alert-core/internal/confirm"
	"github.com/radieske/arb-alert-core/internal/dispatch"
	"github.com/radieske/arb-alert-core/internal/eligibility"
	"github.com/radieske/arb-alert-core/internal/gate"
	"github.com/radieske/arb-alert-core/internal/intake"
	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/internal/oddsmath"
	"github.com/radieske/arb-alert-core/internal/shared/cache"
	"github.com/radieske/arb-alert-core/internal/shared/config"
	"github.com/radieske/arb-alert-core/internal/shared/db"
	"github.com/radieske/arb-alert-core/internal/shared/kafka"
	"github.com/radieske/arb-alert-core/internal/shared/logger"
	"github.com/radieske/arb-alert-core/internal/shared/metrics"
	"github.com/radieske/arb-alert-core/pkg/contracts/topics"
)

// Saídas do processo: 0 shutdown limpo, 1 config fatal ou erro de runtime,
// 2 storage inalcançável no boot.
func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}
	defer log.Sync()

	loc := cfg.Location()

	// Postgres é obrigatório: sem ledger não há serviço
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres indisponível", zap.Error(err))
		return 2
	}
	defer pg.Close()

	store := ledger.NewPostgresStore(pg)
	if err := store.EnsureSchema(context.Background()); err != nil {
		log.Error("schema do ledger", zap.Error(err))
		return 2
	}

	// Redis é opcional: só reforça o dedup entre restarts
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Warn("redis indisponível, dedup só em memória", zap.Error(err))
		rdb = nil
	}

	acceptedW := kafka.NewWriter(cfg.KafkaBrokers, topics.AlertAccepted)
	recordedW := kafka.NewWriter(cfg.KafkaBrokers, topics.BetRecorded)
	resolvedW := kafka.NewWriter(cfg.KafkaBrokers, topics.BetResolved)
	defer acceptedW.Close()
	defer recordedW.Close()
	defer resolvedW.Close()

	table := oddsmath.DefaultProbTable()
	dedup := alert.NewDedupIndex(log, rdb, cfg.DedupTTL)
	classifier := alert.NewClassifier(log, dedup, store, acceptedW, table, cfg.QueueCapacity)

	sender := botport.NewWebhookSender(cfg.TransportURL)
	sender.HTTP.Timeout = cfg.SendTimeout
	elig := eligibility.NewEngine(log, store, eligibility.Limits{
		FreeDailyCap:  cfg.FreeDailyCap,
		FreeSpacing:   cfg.FreeSpacing,
		FreeMaxArbPct: cfg.FreeMaxArbPct,
	})
	dispatcher := dispatch.New(log, store, elig, sender, table, classifier.Queue(), dispatch.Options{
		GlobalRate: cfg.GlobalRatePerSec,
		UserRate:   cfg.PerUserRatePerSec,
	})

	confirmEng := confirm.NewEngine(log, store, resolvedW, table, loc)
	interactionGate := gate.New(log, store, confirmEng, loc)
	guard := antispam.NewGuard(log, antispam.DefaultWindow)
	handler := intake.NewEventHandler(log, store, confirmEng, interactionGate, guard, recordedW, loc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go guard.Sweep(ctx)
	go dispatcher.Run(ctx)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	api := &intake.API{Classifier: classifier, Events: handler}
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("alert-core listening",
			zap.String("addr", apiSrv.Addr),
			zap.String("metrics", ":"+cfg.MetricsPort),
			zap.String("timezone", loc.String()))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("http server", zap.Error(err))
		return 1
	}

	// drena o que está em voo dentro da janela de graça
	log.Info("shutting down", zap.Duration("grace", cfg.ShutdownGrace))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown do api server", zap.Error(err))
	}
	_ = metricsSrv.Shutdown(shutdownCtx)
	return 0
}
