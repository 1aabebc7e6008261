// internal/domain/events.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionEvent is published to the message broker after a transaction row is recorded.
type TransactionEvent struct {
	TransactionID int64             `json:"transaction_id"`
	UserID        int64             `json:"user_id"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	Amount        decimal.Decimal   `json:"amount"`
	Reference     string            `json:"reference"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// NewTransactionEvent builds the event for a persisted transaction.
func NewTransactionEvent(tx *Transaction) TransactionEvent {
	return TransactionEvent{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Type:          tx.Type,
		Status:        tx.Status,
		Amount:        tx.Amount,
		Reference:     tx.Reference,
		OccurredAt:    time.Now().UTC(),
	}
}

// RoutingKey returns the broker routing key, e.g. "transaction.transfer.pending".
func (e TransactionEvent) RoutingKey() string {
	if e.Type == TransactionTypeDeposit {
		return "transaction.deposit.received"
	}
	return "transaction." + string(e.Type) + "." + string(e.Status)
}
