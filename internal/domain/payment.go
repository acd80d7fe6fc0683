package domain

import "time"

// Payment is an append-only ledger entry for a premium subscription.
type Payment struct {
	ID            string
	Email         string
	Amount        int
	Method        string
	TransactionID string
	MonthKey      string
	CreatedAt     time.Time
}

// MonthKeyFor renders the ledger month key ("YYYY-MM") for a point in time.
func MonthKeyFor(t time.Time) string {
	return t.UTC().Format("2006-01")
}
