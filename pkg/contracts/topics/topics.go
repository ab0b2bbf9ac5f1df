package topics

const (
	// Alertas
	AlertAccepted = "alert_accepted"

	// Bets
	BetRecorded = "bet_recorded"
	BetResolved = "bet_resolved"
)
