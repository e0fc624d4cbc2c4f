package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/auth"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
)

// LoginService exchanges a phone + one-time code for a signed token.
type LoginService interface {
	Login(ctx context.Context, phone, code string) (string, *domain.User, error)
}

type AuthHandler struct {
	auth LoginService
}

func NewAuthHandler(authService LoginService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type LoginRequestDTO struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type LoginResponseDTO struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Phone == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "phone and code are required")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Phone, req.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			respondError(w, http.StatusUnauthorized, "invalid_code", "verification code is not valid")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "login failed")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponseDTO{Token: token, User: user})
}
