// internal/service/transaction_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"money-transfer-api/internal/domain"
	"money-transfer-api/internal/repository"
	"money-transfer-api/internal/util"
	"money-transfer-api/pkg/disbursement"
	"money-transfer-api/pkg/rabbitmq"
)

const (
	defaultNarration          = "Money Transfer"
	defaultDepositDescription = "Deposit via bank transfer"
	defaultHistoryLimit       = 50
)

// TransferGateway is the outbound provider used to move money.
// *disbursement.Client implements it.
type TransferGateway interface {
	InitiateTransfer(ctx context.Context, req disbursement.TransferRequest) (*disbursement.TransferResult, error)
}

// TransferInput is a validated outbound transfer request.
type TransferInput struct {
	RecipientAccountNumber string
	RecipientBankCode      string
	Amount                 decimal.Decimal
	Description            *string
}

// DepositNotification is a validated inbound deposit webhook.
type DepositNotification struct {
	Reference     string
	Amount        decimal.Decimal
	AccountNumber string
	SenderName    *string
	Description   *string
}

// TransactionConfig carries the orchestrator's tunables.
type TransactionConfig struct {
	TransferLimit  decimal.Decimal
	GatewayTimeout time.Duration
	EventsExchange string
}

// TransactionService defines the interface for transfer, deposit and history operations.
type TransactionService interface {
	InitiateTransfer(ctx context.Context, userID int64, input TransferInput) (*domain.Transaction, error)
	HandleDeposit(ctx context.Context, notification DepositNotification) (*domain.Transaction, error)
	GetTransactionHistory(ctx context.Context, userID int64, typeFilter string, page, limit int) ([]domain.Transaction, error)
	GetTransactionByID(ctx context.Context, transactionID, userID int64) (*domain.Transaction, error)
}

// transactionService implements the TransactionService interface.
type transactionService struct {
	dbExecutor      repository.DBExecutor
	userRepo        repository.UserRepository
	transactionRepo repository.TransactionRepository
	gateway         TransferGateway
	publisher       rabbitmq.Publisher
	logger          *slog.Logger
	cfg             TransactionConfig
	newReference    func() string
}

// NewTransactionService creates a new instance of TransactionService.
func NewTransactionService(
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
	gateway TransferGateway,
	publisher rabbitmq.Publisher,
	logger *slog.Logger,
	cfg TransactionConfig,
) TransactionService {
	if logger == nil {
		logger = util.GetLogger()
	}
	if publisher == nil {
		publisher = &rabbitmq.NoopPublisher{Logger: logger}
	}
	return &transactionService{
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		gateway:         gateway,
		publisher:       publisher,
		logger:          logger.With("component", "transaction_service"),
		cfg:             cfg,
		newReference:    generateReference,
	}
}

// generateReference returns TXN_<unix-ms>_<6 upper-case hex characters>.
func generateReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TXN_%d_%s", time.Now().UnixMilli(), suffix)
}

// InitiateTransfer sends money to an external account and records exactly one
// transaction row for the attempt, whatever the provider outcome.
func (s *transactionService) InitiateTransfer(ctx context.Context, userID int64, input TransferInput) (*domain.Transaction, error) {
	if !input.Amount.IsPositive() || input.Amount.GreaterThan(s.cfg.TransferLimit) {
		return nil, fmt.Errorf("%w: amount must be greater than 0 and not exceed %s", util.ErrInvalidInput, s.cfg.TransferLimit.StringFixed(2))
	}

	if _, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("initiate transfer: failed to get user %d: %w", userID, err)
	}

	reference := s.newReference()
	narration := defaultNarration
	if input.Description != nil && strings.TrimSpace(*input.Description) != "" {
		narration = *input.Description
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	result, gatewayErr := s.gateway.InitiateTransfer(gatewayCtx, disbursement.TransferRequest{
		AccountNumber: input.RecipientAccountNumber,
		BankCode:      input.RecipientBankCode,
		Amount:        input.Amount,
		Narration:     narration,
		Reference:     reference,
	})
	cancel()

	// Record the attempt even if the caller has gone away.
	persistCtx := context.WithoutCancel(ctx)

	metadata := domain.Metadata{
		"recipient_account_number": input.RecipientAccountNumber,
		"recipient_bank_code":      input.RecipientBankCode,
	}

	if gatewayErr != nil {
		s.logger.Error("Transfer gateway call failed",
			"user_id", userID, "reference", reference, "error", gatewayErr)

		metadata["error"] = gatewayErr.Error()
		failed := domain.NewTransaction(userID, domain.TransactionTypeTransfer, input.Amount, reference,
			domain.TransactionStatusFailed, input.Description, metadata)
		if err := s.transactionRepo.CreateTransaction(persistCtx, s.dbExecutor, failed); err != nil {
			return nil, fmt.Errorf("initiate transfer: failed to record failed transfer %s: %w", reference, err)
		}
		s.publish(persistCtx, failed)
		return nil, util.ErrTransferFailed
	}

	status := domain.TransactionStatusPending
	if result.Status == string(domain.TransactionStatusSuccess) {
		status = domain.TransactionStatusSuccess
	}
	metadata["gateway_reference"] = result.Reference
	metadata["gateway_status"] = result.Status
	metadata["gateway_message"] = result.Message

	transaction := domain.NewTransaction(userID, domain.TransactionTypeTransfer, input.Amount, reference,
		status, input.Description, metadata)
	if err := s.transactionRepo.CreateTransaction(persistCtx, s.dbExecutor, transaction); err != nil {
		s.logger.Error("Transfer accepted by gateway but not recorded",
			"user_id", userID, "reference", reference, "gateway_status", result.Status, "error", err)
		return nil, fmt.Errorf("initiate transfer: failed to record transfer %s: %w", reference, err)
	}

	s.logger.Info("Transfer recorded", "user_id", userID, "reference", reference, "status", status)
	s.publish(persistCtx, transaction)
	return transaction, nil
}

// HandleDeposit records an inbound deposit. It returns (nil, nil) when the
// account number belongs to nobody and the existing row when the reference
// was already processed.
func (s *transactionService) HandleDeposit(ctx context.Context, n DepositNotification) (*domain.Transaction, error) {
	if !n.Amount.IsPositive() || !n.Amount.Equal(n.Amount.Round(2)) {
		return nil, fmt.Errorf("%w: deposit amount must be positive with at most 2 decimal places", util.ErrInvalidInput)
	}

	user, err := s.userRepo.GetUserByVirtualAccountNumber(ctx, s.dbExecutor, n.AccountNumber)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			s.logger.Warn("Deposit for unknown virtual account", "account_number", n.AccountNumber, "reference", n.Reference)
			return nil, nil
		}
		return nil, fmt.Errorf("handle deposit: failed to resolve account %s: %w", n.AccountNumber, err)
	}

	existing, err := s.transactionRepo.GetTransactionByReference(ctx, s.dbExecutor, n.Reference)
	if err == nil {
		s.logger.Info("Duplicate deposit notification ignored", "reference", n.Reference)
		return existing, nil
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("handle deposit: failed to look up reference %s: %w", n.Reference, err)
	}

	description := n.Description
	if description == nil || strings.TrimSpace(*description) == "" {
		d := defaultDepositDescription
		description = &d
	}
	metadata := domain.Metadata{"account_number": n.AccountNumber}
	if n.SenderName != nil {
		metadata["sender_name"] = *n.SenderName
	}

	deposit := domain.NewTransaction(user.ID, domain.TransactionTypeDeposit, n.Amount, n.Reference,
		domain.TransactionStatusSuccess, description, metadata)
	if err := s.transactionRepo.CreateTransaction(ctx, s.dbExecutor, deposit); err != nil {
		if util.IsError(err, util.ErrDuplicateEntry) {
			// A concurrent delivery of the same reference won the insert.
			winner, readErr := s.transactionRepo.GetTransactionByReference(ctx, s.dbExecutor, n.Reference)
			if readErr != nil {
				return nil, fmt.Errorf("handle deposit: failed to re-read reference %s: %w", n.Reference, readErr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("handle deposit: failed to record deposit %s: %w", n.Reference, err)
	}

	s.logger.Info("Deposit recorded", "user_id", user.ID, "reference", n.Reference, "amount", deposit.Amount.StringFixed(2))
	s.publish(ctx, deposit)
	return deposit, nil
}

// GetTransactionHistory lists a user's transactions newest first. An unknown
// type filter lists every type.
func (s *transactionService) GetTransactionHistory(ctx context.Context, userID int64, typeFilter string, page, limit int) ([]domain.Transaction, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	offset := (page - 1) * limit

	var (
		transactions []domain.Transaction
		err          error
	)
	if txType, ok := domain.ParseTransactionType(typeFilter); ok {
		transactions, err = s.transactionRepo.GetTransactionsByUserIDAndType(ctx, s.dbExecutor, userID, txType, limit, offset)
	} else {
		transactions, err = s.transactionRepo.GetTransactionsByUserID(ctx, s.dbExecutor, userID, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction history: failed for user %d: %w", userID, err)
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	return transactions, nil
}

// GetTransactionByID returns one of the user's transactions. Transactions
// owned by someone else are reported as not found.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID, userID int64) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetTransactionByID(ctx, s.dbExecutor, transactionID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: failed to get transaction %d: %w", transactionID, err)
	}
	if transaction.UserID != userID {
		return nil, util.ErrTransactionNotFound
	}
	return transaction, nil
}

func (s *transactionService) publish(ctx context.Context, transaction *domain.Transaction) {
	event := domain.NewTransactionEvent(transaction)
	if err := s.publisher.Publish(ctx, s.cfg.EventsExchange, event.RoutingKey(), event); err != nil {
		s.logger.Warn("Failed to publish transaction event",
			"reference", transaction.Reference, "routing_key", event.RoutingKey(), "error", err)
	}
}
