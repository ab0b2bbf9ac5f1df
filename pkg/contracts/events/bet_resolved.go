package events

// Evento emitido após o questionário de confirmação fechar a bet.
type BetResolved struct {
	BetID        string  `json:"bet_id"`
	UserID       string  `json:"user_id"`
	Status       string  `json:"status"` // "won" | "lost" | "push"
	Outcome      string  `json:"outcome,omitempty"`
	ActualProfit float64 `json:"actual_profit"`
	TsUnixMs     int64   `json:"ts_unix_ms"`
}
