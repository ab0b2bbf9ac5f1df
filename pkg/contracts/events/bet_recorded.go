package events

type BetRecorded struct {
	BetID          string  `json:"bet_id"`
	UserID         string  `json:"user_id"`
	AlertID        string  `json:"alert_id"`
	Class          string  `json:"class"`
	EventHash      string  `json:"event_hash"`
	TotalStake     float64 `json:"total_stake"`
	ExpectedProfit float64 `json:"expected_profit"`
	BetDate        string  `json:"bet_date"` // YYYY-MM-DD no fuso do deployment
	TsUnixMs       int64   `json:"ts_unix_ms"`
}
