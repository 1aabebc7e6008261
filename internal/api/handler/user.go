// internal/api/handler/user.go
package handler

import (
	"log/slog"
	"net/http"

	"money-transfer-api/internal/api/middleware"
	"money-transfer-api/internal/service"
	"money-transfer-api/internal/util"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	responder
	service service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc service.UserService, logger *slog.Logger, development bool) *UserHandler {
	return &UserHandler{
		responder: newResponder(logger, development),
		service:   svc,
	}
}

// GetProfile returns the caller's profile.
// GET /users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthorized)
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, "Profile retrieved successfully", user)
}

// GenerateVirtualAccount issues a virtual account to a caller without one.
// POST /users/virtual-account
func (h *UserHandler) GenerateVirtualAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthorized)
		return
	}

	user, err := h.service.GenerateVirtualAccount(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, "Virtual account ready", user)
}
