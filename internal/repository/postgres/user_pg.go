// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"money-transfer-api/internal/domain"
	"money-transfer-api/internal/repository"
	"money-transfer-api/internal/util"
)

const userColumns = `id, full_name, email, password_hash, phone_number, virtual_account_number, virtual_account_bank, created_at, updated_at`

// UserRepository implements repository.UserRepository for PostgreSQL.
// It holds no connection; every method receives the DBExecutor to run on.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user into the database using the provided DBExecutor.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (full_name, email, password_hash, phone_number, virtual_account_number, virtual_account_bank, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.VirtualAccountNumber,
		user.VirtualAccountBank,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create user: %w", util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID using the provided DBExecutor.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := q.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address using the provided DBExecutor.
func (r *UserRepository) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := q.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByVirtualAccountNumber retrieves the owner of a virtual account.
func (r *UserRepository) GetUserByVirtualAccountNumber(ctx context.Context, q repository.DBExecutor, accountNumber string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE virtual_account_number = $1`
	if err := q.GetContext(ctx, &user, query, accountNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by account number '%s': %w", accountNumber, err)
	}
	return &user, nil
}

// UpdateVirtualAccount sets both virtual account columns in one statement.
func (r *UserRepository) UpdateVirtualAccount(ctx context.Context, q repository.DBExecutor, userID int64, accountNumber, bankName string) error {
	query := `UPDATE users SET virtual_account_number = $1, virtual_account_bank = $2, updated_at = $3 WHERE id = $4`
	result, err := q.ExecContext(ctx, query, accountNumber, bankName, time.Now().UTC(), userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to update virtual account for user %d: %w", userID, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update virtual account for user %d: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating virtual account for user %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
