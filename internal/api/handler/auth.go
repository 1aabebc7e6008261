// internal/api/handler/auth.go
package handler

import (
	"log/slog"
	"net/http"

	"money-transfer-api/internal/service"
	"money-transfer-api/internal/validation"
)

// AuthHandler handles signup and login.
type AuthHandler struct {
	responder
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.AuthService, logger *slog.Logger, development bool) *AuthHandler {
	return &AuthHandler{
		responder: newResponder(logger, development),
		service:   svc,
	}
}

// Signup registers a user and issues their virtual account.
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req validation.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if err := validation.ValidateSignup(&req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	result, err := h.service.Signup(r.Context(), service.SignupInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusCreated, "User registered successfully", result)
}

// Login authenticates a user.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if err := validation.ValidateLogin(&req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, "Login successful", result)
}
