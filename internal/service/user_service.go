// internal/service/user_service.go
package service

import (
	"context"
	"fmt"

	"money-transfer-api/internal/domain"
	"money-transfer-api/internal/repository"
	"money-transfer-api/internal/util"
	"money-transfer-api/pkg/accountnumber"
)

// UserService defines the interface for profile operations.
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	GenerateVirtualAccount(ctx context.Context, userID int64) (*domain.User, error)
}

type userService struct {
	dbExecutor            repository.DBExecutor
	userRepo              repository.UserRepository
	generateAccountNumber func(userID int64) (string, error)
}

// NewUserService creates a new instance of UserService.
func NewUserService(dbExecutor repository.DBExecutor, userRepo repository.UserRepository) UserService {
	return &userService{
		dbExecutor:            dbExecutor,
		userRepo:              userRepo,
		generateAccountNumber: accountnumber.Generate,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile: failed to get user %d: %w", userID, err)
	}
	return user, nil
}

// GenerateVirtualAccount issues a virtual account if the user has none yet.
// A user who already has one gets it back unchanged.
func (s *userService) GenerateVirtualAccount(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasVirtualAccount() {
		return user, nil
	}

	accountNumber, err := s.generateAccountNumber(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate virtual account: %w", err)
	}
	bankName := accountnumber.BankName()
	if err := s.userRepo.UpdateVirtualAccount(ctx, s.dbExecutor, user.ID, accountNumber, bankName); err != nil {
		return nil, fmt.Errorf("generate virtual account: failed to assign account to user %d: %w", user.ID, err)
	}
	user.SetVirtualAccount(accountNumber, bankName)
	return user, nil
}
