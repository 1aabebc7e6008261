// internal/domain/transaction.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a financial transaction.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeTransfer TransactionType = "transfer"
)

// ParseTransactionType returns the matching TransactionType and true, or false for unknown values.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(s) {
	case TransactionTypeDeposit, TransactionTypeTransfer:
		return TransactionType(s), true
	}
	return "", false
}

// TransactionStatus defines the status of a financial transaction.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Metadata is the open key/value bag attached to a transaction, stored as JSONB.
//
// Transfers carry recipient_account_number, recipient_bank_code and either the
// gateway_reference/gateway_status/gateway_message echo or an error message.
// Deposits carry sender_name and account_number.
type Metadata map[string]any

// Value implements driver.Valuer.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("metadata: unsupported scan type %T", src)
	}
	out := Metadata{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
	}
	*m = out
	return nil
}

// Transaction represents a financial transaction record.
type Transaction struct {
	ID          int64             `db:"id" json:"id"`                   // Primary key, BIGSERIAL in DB
	UserID      int64             `db:"user_id" json:"user_id"`         // Owning user
	Type        TransactionType   `db:"type" json:"type"`               // deposit or transfer
	Amount      decimal.Decimal   `db:"amount" json:"amount"`           // NUMERIC(15, 2) in DB
	Reference   string            `db:"reference" json:"reference"`     // Globally unique
	Status      TransactionStatus `db:"status" json:"status"`           // pending, success or failed
	Description *string           `db:"description" json:"description"` // Optional description
	Metadata    Metadata          `db:"metadata" json:"metadata"`       // Per-type echo fields
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`   // Timestamp of record creation
}

// NewTransaction creates a new Transaction instance. Amounts are kept at two decimal places.
func NewTransaction(
	userID int64,
	txType TransactionType,
	amount decimal.Decimal,
	reference string,
	status TransactionStatus,
	description *string,
	metadata Metadata,
) *Transaction {
	if metadata == nil {
		metadata = Metadata{}
	}
	return &Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount.Round(2),
		Reference:   reference,
		Status:      status,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
}
