// internal/api/handler/webhook.go
package handler

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"

	"money-transfer-api/internal/service"
	"money-transfer-api/internal/util"
	"money-transfer-api/internal/validation"
)

// WebhookSecretHeader carries the shared secret on provider callbacks.
const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookHandler receives provider callbacks.
type WebhookHandler struct {
	responder
	service service.TransactionService
	secret  []byte
}

// NewWebhookHandler creates a new WebhookHandler. Requests must present secret
// in the X-Webhook-Secret header.
func NewWebhookHandler(svc service.TransactionService, secret string, logger *slog.Logger, development bool) *WebhookHandler {
	return &WebhookHandler{
		responder: newResponder(logger, development),
		service:   svc,
		secret:    []byte(secret),
	}
}

// HandleDeposit records an inbound deposit notification.
// POST /webhooks/deposit
func (h *WebhookHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	presented := []byte(r.Header.Get(WebhookSecretHeader))
	if len(h.secret) == 0 || subtle.ConstantTimeCompare(presented, h.secret) != 1 {
		h.logger.Warn("Invalid webhook secret received", "remote_addr", r.RemoteAddr)
		h.respondWithError(w, r, fmt.Errorf("%w: invalid webhook secret", util.ErrInvalidInput))
		return
	}

	var req validation.DepositWebhookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.logger.Info("Deposit webhook received",
		"reference", req.Reference, "account_number", req.AccountNumber, "remote_addr", r.RemoteAddr)

	if err := validation.ValidateDepositWebhook(&req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	transaction, err := h.service.HandleDeposit(r.Context(), service.DepositNotification{
		Reference:     req.Reference,
		Amount:        req.Amount,
		AccountNumber: req.AccountNumber,
		SenderName:    req.SenderName,
		Description:   req.Description,
	})
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	if transaction == nil {
		h.respondSuccess(w, http.StatusOK, "Webhook received but no matching account found", nil)
		return
	}
	h.respondSuccess(w, http.StatusOK, "Deposit processed successfully", map[string]string{
		"reference": transaction.Reference,
	})
}
