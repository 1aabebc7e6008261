package validation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fe.Field)
	}
	return out
}

func TestValidateSignup(t *testing.T) {
	valid := SignupRequest{
		FullName:    "Jane Doe",
		Email:       " Jane@Example.com ",
		Password:    "supersecret",
		PhoneNumber: "08031234567",
	}

	t.Run("Valid", func(t *testing.T) {
		req := valid
		require.NoError(t, ValidateSignup(&req))
		assert.Equal(t, "jane@example.com", req.Email)
	})

	t.Run("InternationalPhone", func(t *testing.T) {
		req := valid
		req.PhoneNumber = "+2349012345678"
		assert.NoError(t, ValidateSignup(&req))
	})

	t.Run("Invalid", func(t *testing.T) {
		req := SignupRequest{FullName: "J", Email: "nope", Password: "short", PhoneNumber: "08631234567"}
		got := fields(t, ValidateSignup(&req))
		assert.ElementsMatch(t, []string{"full_name", "email", "password", "phone_number"}, got)
	})
}

func TestValidateLogin(t *testing.T) {
	req := LoginRequest{Email: "jane@example.com"}
	assert.Equal(t, []string{"password"}, fields(t, ValidateLogin(&req)))
}

func TestValidateTransfer(t *testing.T) {
	base := TransferRequest{
		RecipientAccountNumber: "0123456789",
		RecipientBankCode:      "058",
		Amount:                 decimal.RequireFromString("1500.50"),
	}

	t.Run("Valid", func(t *testing.T) {
		req := base
		assert.NoError(t, ValidateTransfer(&req))
	})

	t.Run("AtLimit", func(t *testing.T) {
		req := base
		req.Amount = decimal.NewFromInt(10000)
		assert.NoError(t, ValidateTransfer(&req))
	})

	t.Run("OverLimit", func(t *testing.T) {
		req := base
		req.Amount = decimal.RequireFromString("10000.01")
		assert.Equal(t, []string{"amount"}, fields(t, ValidateTransfer(&req)))
	})

	t.Run("ZeroAmount", func(t *testing.T) {
		req := base
		req.Amount = decimal.Zero
		assert.Equal(t, []string{"amount"}, fields(t, ValidateTransfer(&req)))
	})

	t.Run("TooManyDecimals", func(t *testing.T) {
		req := base
		req.Amount = decimal.RequireFromString("10.005")
		assert.Equal(t, []string{"amount"}, fields(t, ValidateTransfer(&req)))
	})

	t.Run("BadAccountAndBank", func(t *testing.T) {
		req := base
		req.RecipientAccountNumber = "01234abcde"
		req.RecipientBankCode = "58"
		got := fields(t, ValidateTransfer(&req))
		assert.ElementsMatch(t, []string{"recipient_account_number", "recipient_bank_code"}, got)
	})
}

func TestValidateDepositWebhook(t *testing.T) {
	base := DepositWebhookRequest{Reference: "DEP1", Amount: decimal.NewFromInt(500), AccountNumber: "9912345600"}

	t.Run("Valid", func(t *testing.T) {
		req := base
		assert.NoError(t, ValidateDepositWebhook(&req))
	})

	t.Run("LargestStorableAmount", func(t *testing.T) {
		req := base
		req.Amount = decimal.RequireFromString("9999999999999.99")
		assert.NoError(t, ValidateDepositWebhook(&req))
	})

	t.Run("MissingReferenceAndNegativeAmount", func(t *testing.T) {
		req := base
		req.Amount = decimal.NewFromInt(-1)
		req.Reference = ""
		got := fields(t, ValidateDepositWebhook(&req))
		assert.ElementsMatch(t, []string{"reference", "amount"}, got)
	})

	t.Run("SubCentAmount", func(t *testing.T) {
		req := base
		req.Amount = decimal.RequireFromString("0.004")
		assert.Equal(t, []string{"amount"}, fields(t, ValidateDepositWebhook(&req)))
	})

	t.Run("ThreeDecimalAmount", func(t *testing.T) {
		req := base
		req.Amount = decimal.RequireFromString("25.125")
		assert.Equal(t, []string{"amount"}, fields(t, ValidateDepositWebhook(&req)))
	})

	t.Run("AmountTooLargeToStore", func(t *testing.T) {
		req := base
		req.Amount = decimal.RequireFromString("1e20")
		assert.Equal(t, []string{"amount"}, fields(t, ValidateDepositWebhook(&req)))
	})

	t.Run("ReferenceTooLong", func(t *testing.T) {
		req := base
		req.Reference = strings.Repeat("R", 150)
		assert.Equal(t, []string{"reference"}, fields(t, ValidateDepositWebhook(&req)))
	})

	t.Run("AccountAndSenderTooLong", func(t *testing.T) {
		req := base
		sender := strings.Repeat("s", 101)
		req.AccountNumber = strings.Repeat("9", 21)
		req.SenderName = &sender
		got := fields(t, ValidateDepositWebhook(&req))
		assert.ElementsMatch(t, []string{"account_number", "sender_name"}, got)
	})
}

func TestErrorsMessage(t *testing.T) {
	err := Errors{{Field: "email", Message: "is required"}}
	assert.Equal(t, "validation failed: email: is required", err.Error())
}
