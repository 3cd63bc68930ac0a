package domain

import "time"

// TableRow is one rendered row of the transaction or report table.
type TableRow struct {
	Date     string `json:"date"`
	Icon     string `json:"icon"`
	Merchant string `json:"merchant"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Type     string `json:"type"`
}

// RealtimeEvent is a push notification that records changed upstream.
// It carries no payload beyond its name.
type RealtimeEvent struct {
	Name       string    `json:"name"`
	ReceivedAt time.Time `json:"received_at"`
}
