// internal/repository/user_repo.go
package repository

import (
	"context"

	"money-transfer-api/internal/domain"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser adds a new user to the database using the provided DBExecutor.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by their ID using the provided DBExecutor.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByEmail retrieves a user by their email address using the provided DBExecutor.
	GetUserByEmail(ctx context.Context, q DBExecutor, email string) (*domain.User, error)
	// GetUserByVirtualAccountNumber resolves the owner of a virtual account.
	GetUserByVirtualAccountNumber(ctx context.Context, q DBExecutor, accountNumber string) (*domain.User, error)
	// UpdateVirtualAccount sets the virtual account number and bank of a user together.
	UpdateVirtualAccount(ctx context.Context, q DBExecutor, userID int64, accountNumber, bankName string) error
}
