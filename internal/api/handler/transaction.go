// internal/api/handler/transaction.go
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"money-transfer-api/internal/api/middleware"
	"money-transfer-api/internal/api/types"
	"money-transfer-api/internal/domain"
	"money-transfer-api/internal/service"
	"money-transfer-api/internal/util"
	"money-transfer-api/internal/validation"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 100
)

// TransactionHandler handles transfers and transaction history.
type TransactionHandler struct {
	responder
	service service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc service.TransactionService, logger *slog.Logger, development bool) *TransactionHandler {
	return &TransactionHandler{
		responder: newResponder(logger, development),
		service:   svc,
	}
}

// InitiateTransfer sends money to an external bank account.
// POST /transactions/transfer
func (h *TransactionHandler) InitiateTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthorized)
		return
	}

	var req validation.TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if err := validation.ValidateTransfer(&req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	transaction, err := h.service.InitiateTransfer(r.Context(), userID, service.TransferInput{
		RecipientAccountNumber: req.RecipientAccountNumber,
		RecipientBankCode:      req.RecipientBankCode,
		Amount:                 req.Amount,
		Description:            req.Description,
	})
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusCreated, "Transfer initiated successfully", transaction)
}

// GetTransactionHistory lists the caller's transactions.
// GET /transactions?type=&page=&limit=
func (h *TransactionHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthorized)
		return
	}

	query := r.URL.Query()
	page, pageErr := intParam(query.Get("page"), defaultPage)
	limit, limitErr := intParam(query.Get("limit"), defaultLimit)
	if pageErr != nil || limitErr != nil || page < 1 || limit < 1 || limit > maxLimit {
		h.respondWithError(w, r, fmt.Errorf("%w: invalid pagination parameters", util.ErrInvalidInput))
		return
	}

	transactions, err := h.service.GetTransactionHistory(r.Context(), userID, query.Get("type"), page, limit)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Success: true,
		Message: "Transaction history retrieved successfully",
		Data:    transactions,
		Pagination: types.Pagination{
			Page:  page,
			Limit: limit,
			Total: len(transactions),
		},
	})
}

// GetTransactionByID returns one of the caller's transactions.
// GET /transactions/{id}
func (h *TransactionHandler) GetTransactionByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthorized)
		return
	}

	transactionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || transactionID < 1 {
		h.respondWithError(w, r, fmt.Errorf("%w: invalid transaction ID", util.ErrInvalidInput))
		return
	}

	transaction, err := h.service.GetTransactionByID(r.Context(), transactionID, userID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, "Transaction retrieved successfully", transaction)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
