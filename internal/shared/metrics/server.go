package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthFunc func(ctx context.Context) error

// StartMetricsServer sobe um servidor HTTP leve só pra /metrics e /healthz.
// executável numa goroutine no main de cada serviço.
func StartMetricsServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}

// Contadores do pipeline de alertas e do fluxo de interação do usuário
var (
	IntakeAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_alerts_accepted_total",
		Help: "Alertas aceitos no intake por classe",
	}, []string{"class"})

	IntakeDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_alerts_duplicate_total",
		Help: "Alertas descartados por fingerprint repetido",
	})

	IntakeMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_alerts_malformed_total",
		Help: "Payloads rejeitados com 400",
	})

	IntakeOverloaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_alerts_overloaded_total",
		Help: "Alertas recusados com 503 por fila cheia",
	})

	DispatchSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_messages_sent_total",
		Help: "Mensagens entregues ao transporte por classe",
	}, []string{"class"})

	DispatchRetried = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_send_retries_total",
		Help: "Retentativas de envio após falha transitória",
	})

	DispatchDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_messages_dropped_total",
		Help: "Mensagens descartadas por motivo (blocked, exhausted, rounding)",
	}, []string{"reason"})

	GateDiverted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gate_events_diverted_total",
		Help: "Eventos de usuário desviados para o fluxo de confirmação",
	})

	GuardBlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antispam_events_blocked_total",
		Help: "Callbacks bloqueados pelo guard por motivo (inflight, window)",
	}, []string{"reason"})
)
