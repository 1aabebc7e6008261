// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"money-transfer-api/internal/domain"
	"money-transfer-api/internal/repository"
	"money-transfer-api/internal/util"
)

const transactionColumns = `id, user_id, type, amount, reference, status, description, metadata, created_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record into the database using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (user_id, type, amount, reference, status, description, metadata, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.UserID,
		transaction.Type,
		transaction.Amount,
		transaction.Reference,
		transaction.Status,
		transaction.Description,
		transaction.Metadata,
		transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create transaction %s: %w", transaction.Reference, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionByID retrieves a transaction by its ID.
func (r *TransactionRepository) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transaction, error) {
	var transaction domain.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	if err := q.GetContext(ctx, &transaction, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by ID %d: %w", id, err)
	}
	return &transaction, nil
}

// GetTransactionByReference retrieves a transaction by its reference.
func (r *TransactionRepository) GetTransactionByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	var transaction domain.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`
	if err := q.GetContext(ctx, &transaction, query, reference); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by reference '%s': %w", reference, err)
	}
	return &transaction, nil
}

// GetTransactionsByUserID retrieves a paginated list of transactions for a user, newest first.
func (r *TransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transactions, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for user %d: %w", userID, err)
	}
	return transactions, nil
}

// GetTransactionsByUserIDAndType retrieves a paginated list of one type of transaction for a user, newest first.
func (r *TransactionRepository) GetTransactionsByUserIDAndType(ctx context.Context, q repository.DBExecutor, userID int64, txType domain.TransactionType, limit, offset int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	if err := q.SelectContext(ctx, &transactions, query, userID, txType, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to fetch %s transactions for user %d: %w", txType, userID, err)
	}
	return transactions, nil
}

// UpdateTransactionStatus updates the status of a specific transaction.
func (r *TransactionRepository) UpdateTransactionStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.TransactionStatus) error {
	result, err := q.ExecContext(ctx, `UPDATE transactions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating transaction %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
