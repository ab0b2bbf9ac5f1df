package events

import "time"

// Evento publicado no tópico "alert_accepted" após classificação e dedup.
// Consumido pelo lado de analytics (fora deste repositório).
type AlertAccepted struct {
	AlertID     string    `json:"alert_id"`
	EventID     string    `json:"event_id"`
	Class       string    `json:"class"` // "arbitrage" | "middle" | "good_ev"
	Fingerprint string    `json:"fingerprint"`
	League      string    `json:"league"`
	Match       string    `json:"match"`
	Pct         float64   `json:"pct"` // arb-% ou EV-%
	ReceivedAt  time.Time `json:"received_at"`
}
