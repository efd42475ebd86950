package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jobhub/identity-api/internal/application/account"
	"github.com/jobhub/identity-api/internal/domain"
	"github.com/jobhub/identity-api/internal/pkg/validate"
)

// SessionHandler handles login.
type SessionHandler struct {
	svc account.Service
}

func NewSessionHandler(svc account.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	token, a, err := h.svc.Login(r.Context(), req.Role, req.Email, req.Password)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Message: fmt.Sprintf("Welcome %s! Login successful.", a.Profile.DisplayName),
		Token:   token,
		Account: a,
	})
}
