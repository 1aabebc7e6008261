// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"money-transfer-api/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations.
type TransactionRepository interface {
	// CreateTransaction adds a new transaction record to the database using the provided DBExecutor.
	// A reference that already exists yields util.ErrDuplicateEntry.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionByID retrieves a single transaction by its ID.
	GetTransactionByID(ctx context.Context, q DBExecutor, id int64) (*domain.Transaction, error)
	// GetTransactionByReference retrieves a single transaction by its unique reference.
	GetTransactionByReference(ctx context.Context, q DBExecutor, reference string) (*domain.Transaction, error)
	// GetTransactionsByUserID retrieves a user's transactions, newest first.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, error)
	// GetTransactionsByUserIDAndType retrieves a user's transactions of one type, newest first.
	GetTransactionsByUserIDAndType(ctx context.Context, q DBExecutor, userID int64, txType domain.TransactionType, limit, offset int) ([]domain.Transaction, error)
	// UpdateTransactionStatus changes the status of an existing transaction.
	UpdateTransactionStatus(ctx context.Context, q DBExecutor, id int64, status domain.TransactionStatus) error
}
