// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"money-transfer-api/internal/domain"
	"money-transfer-api/internal/repository"
	"money-transfer-api/internal/util"
	"money-transfer-api/pkg/accountnumber"
	"money-transfer-api/pkg/db"
)

// TokenIssuer issues access tokens. *auth.TokenManager implements it.
type TokenIssuer interface {
	Generate(userID int64, email string) (string, error)
}

// SignupInput is a validated signup request.
type SignupInput struct {
	FullName    string
	Email       string
	Password    string
	PhoneNumber string
}

// LoginInput is a validated login request.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService defines the interface for registration and login.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

// authService implements the AuthService interface.
type authService struct {
	dbBeginner            db.DBTxBeginner
	dbExecutor            repository.DBExecutor
	userRepo              repository.UserRepository
	tokens                TokenIssuer
	bcryptCost            int
	generateAccountNumber func(userID int64) (string, error)
	beginTx               db.BeginTxFunc
	commitTx              db.CommitTxFunc
	rollbackTx            db.RollbackTxFunc
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	bcryptCost int,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AuthService {
	return &authService{
		dbBeginner:            dbBeginner,
		dbExecutor:            dbExecutor,
		userRepo:              userRepo,
		tokens:                tokens,
		bcryptCost:            bcryptCost,
		generateAccountNumber: accountnumber.Generate,
		beginTx:               beginTx,
		commitTx:              commitTx,
		rollbackTx:            rollbackTx,
	}
}

// Signup creates the user and issues their virtual account in one database transaction.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("signup: failed to hash password: %w", err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("signup: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("signup: transaction controller does not implement DBExecutor")
	}

	_, err = s.userRepo.GetUserByEmail(ctx, txExecutor, input.Email)
	switch {
	case err == nil:
		return nil, util.ErrEmailTaken
	case !util.IsError(err, util.ErrNotFound):
		return nil, fmt.Errorf("signup: failed to check email: %w", err)
	}

	user := domain.NewUser(input.FullName, input.Email, string(hash), input.PhoneNumber)
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		if util.IsError(err, util.ErrDuplicateEntry) {
			return nil, util.ErrEmailTaken
		}
		return nil, fmt.Errorf("signup: failed to create user: %w", err)
	}

	accountNumber, err := s.generateAccountNumber(user.ID)
	if err != nil {
		return nil, fmt.Errorf("signup: failed to generate account number: %w", err)
	}
	bankName := accountnumber.BankName()
	if err := s.userRepo.UpdateVirtualAccount(ctx, txExecutor, user.ID, accountNumber, bankName); err != nil {
		return nil, fmt.Errorf("signup: failed to assign virtual account: %w", err)
	}
	user.SetVirtualAccount(accountNumber, bankName)

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("signup: failed to commit transaction: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, input.Email)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: failed to verify password: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
