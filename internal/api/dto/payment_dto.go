package dto

import "time"

// SubscribeRequest payload.
type SubscribeRequest struct {
	Method string `json:"method"`
}

// PaymentResponse exposes one ledger entry.
type PaymentResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Amount        int       `json:"amount"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transaction_id"`
	MonthKey      string    `json:"month_key"`
	CreatedAt     time.Time `json:"created_at"`
}
