package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/botport"
	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

// API expõe as duas superfícies HTTP do core: ingestão de alertas dos
// produtores e os eventos de usuário repassados pelo bridge de chat.
type API struct {
	Classifier *alert.Classifier
	Events     *EventHandler
}

// Router retorna o roteador HTTP do serviço
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/alert/arbitrage", a.postAlert(alert.ClassArbitrage)) // arb de 2+ saídas
	r.Post("/alert/middle", a.postAlert(alert.ClassMiddle))       // par over/under sobreposto
	r.Post("/alert/good_ev", a.postAlert(alert.ClassGoodEV))      // +EV de lado único
	r.Post("/user/event", a.postUserEvent)                        // callbacks/comandos do bridge
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// postAlert aceita o envelope do produtor para a classe da rota.
// 200 aceito, 202 duplicado (descartado), 400 malformado, 503 fila cheia.
func (a *API) postAlert(class alert.Class) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env AlertEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
			return
		}

		al := env.ToAlert(class)
		err := a.Classifier.Accept(r.Context(), al)

		var vErr *alert.ValidationError
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{"status": "accepted", "alert_id": al.ID})
		case errors.Is(err, alert.ErrDuplicate):
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "duplicate"})
		case errors.As(err, &vErr):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Reason})
		case errors.Is(err, alert.ErrQueueFull):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "queue full, slow down"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
}

// postUserEvent processa uma interação e devolve as mensagens de resposta
// que o bridge deve entregar ao usuário.
func (a *API) postUserEvent(w http.ResponseWriter, r *http.Request) {
	var ev botport.InboundEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return
	}
	if ev.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user_id"})
		return
	}

	msgs := a.Events.Handle(r.Context(), ev)
	if msgs == nil {
		msgs = []messages.Message{}
	}
	writeJSON(w, http.StatusOK, map[string][]messages.Message{"messages": msgs})
}
