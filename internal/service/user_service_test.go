package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"money-transfer-api/internal/domain"
	"money-transfer-api/internal/util"
)

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	svc := NewUserService(new(MockDBExecutor), userRepo)

	userRepo.On("GetUserByID", ctx, mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil).Once()
	userRepo.On("GetUserByID", ctx, mock.Anything, int64(2)).Return(nil, util.ErrNotFound).Once()

	user, err := svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	_, err = svc.GetProfile(ctx, 2)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestGenerateVirtualAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("AlreadyIssued", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(new(MockDBExecutor), userRepo)
		existing := &domain.User{ID: 1}
		existing.SetVirtualAccount("9900000001", "Raven Virtual Bank")
		userRepo.On("GetUserByID", ctx, mock.Anything, int64(1)).Return(existing, nil).Once()

		user, err := svc.GenerateVirtualAccount(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "9900000001", *user.VirtualAccountNumber)
		userRepo.AssertNotCalled(t, "UpdateVirtualAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Issues", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(new(MockDBExecutor), userRepo).(*userService)
		svc.generateAccountNumber = func(int64) (string, error) { return "9912345601", nil }

		userRepo.On("GetUserByID", ctx, mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil).Once()
		userRepo.On("UpdateVirtualAccount", ctx, mock.Anything, int64(1), "9912345601", "Raven Virtual Bank").Return(nil).Once()

		user, err := svc.GenerateVirtualAccount(ctx, 1)

		require.NoError(t, err)
		require.True(t, user.HasVirtualAccount())
		assert.Equal(t, "9912345601", *user.VirtualAccountNumber)
		assert.Equal(t, "Raven Virtual Bank", *user.VirtualAccountBank)
		userRepo.AssertExpectations(t)
	})
}
