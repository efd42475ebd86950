package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jobhub/identity-api/internal/application/account"
	"github.com/jobhub/identity-api/internal/domain"
	"github.com/jobhub/identity-api/internal/pkg/validate"
	"github.com/jobhub/identity-api/internal/transport/http/middleware"
)

// AccountHandler handles registration, email verification and profile reads.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a, err := h.svc.Register(r.Context(), req)
	if err != nil {
		// The account may exist even when the code could not be sent; the
		// status still signals the failure so the client can prompt a retry.
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AccountEnvelope{
		Message: fmt.Sprintf("Registered successfully! Verify your email using the OTP sent to %s.", a.Email.Address),
		Account: a,
	})
}

func (h *AccountHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.VerifyRegistration(r.Context(), req.Role, req.Email, req.OTP); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email verified successfully! You can now login."})
}

// Me returns the profile of the authenticated account, loaded by the
// role+email identity carried in the bearer token.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.Get(r.Context(), claims.Role, claims.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountEnvelope{Account: a})
}
