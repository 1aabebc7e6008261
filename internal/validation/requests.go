package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	PhoneNumber string `json:"phone_number" validate:"required,ngphone"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TransferRequest is the body of POST /transactions/transfer.
type TransferRequest struct {
	RecipientAccountNumber string          `json:"recipient_account_number" validate:"required,len=10,numeric"`
	RecipientBankCode      string          `json:"recipient_bank_code" validate:"required,len=3,numeric"`
	Amount                 decimal.Decimal `json:"amount" validate:"required,gt=0,lte=10000"`
	Description            *string         `json:"description,omitempty" validate:"omitempty,max=255"`
}

// DepositWebhookRequest is the body of POST /webhooks/deposit.
type DepositWebhookRequest struct {
	Reference     string          `json:"reference" validate:"required,max=100"`
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0"`
	AccountNumber string          `json:"account_number" validate:"required,max=20"`
	SenderName    *string         `json:"sender_name,omitempty" validate:"omitempty,max=100"`
	Description   *string         `json:"description,omitempty" validate:"omitempty,max=255"`
}

// MaxStoredAmount is the largest value a NUMERIC(15,2) amount column holds.
var MaxStoredAmount = decimal.RequireFromString("9999999999999.99")

// ValidateSignup trims and validates a signup body.
func ValidateSignup(req *SignupRequest) error {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	return Struct(req)
}

// ValidateLogin trims and validates a login body.
func ValidateLogin(req *LoginRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return Struct(req)
}

// ValidateTransfer validates a transfer body. Amounts carry at most two decimal places.
func ValidateTransfer(req *TransferRequest) error {
	req.RecipientAccountNumber = strings.TrimSpace(req.RecipientAccountNumber)
	req.RecipientBankCode = strings.TrimSpace(req.RecipientBankCode)

	return withAmountChecks(Struct(req), req.Amount)
}

// ValidateDepositWebhook validates a deposit notification body.
func ValidateDepositWebhook(req *DepositWebhookRequest) error {
	req.Reference = strings.TrimSpace(req.Reference)
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	return withAmountChecks(Struct(req), req.Amount)
}

// withAmountChecks adds the amount rules tags cannot express to the result of
// Struct. The amount error from tags, if any, takes precedence.
func withAmountChecks(err error, amount decimal.Decimal) error {
	var errs Errors
	if err != nil {
		errs = append(errs, err.(Errors)...)
	}
	for _, fe := range errs {
		if fe.Field == "amount" {
			return errs
		}
	}
	switch {
	case !amount.Equal(amount.Round(2)):
		errs = append(errs, FieldError{Field: "amount", Message: "must have at most 2 decimal places"})
	case amount.GreaterThan(MaxStoredAmount):
		errs = append(errs, FieldError{Field: "amount", Message: "must not exceed " + MaxStoredAmount.StringFixed(2)})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
