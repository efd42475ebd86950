package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobhub/identity-api/internal/application/account"
	"github.com/jobhub/identity-api/internal/domain"
	"github.com/jobhub/identity-api/internal/pkg/validate"
)

// PasswordResetHandler handles the two-step password reset flow.
type PasswordResetHandler struct {
	svc account.Service
}

func NewPasswordResetHandler(svc account.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

func (h *PasswordResetHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req domain.PasswordResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.RequestPasswordReset(r.Context(), req.Role, req.Email); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{
			Message: fmt.Sprintf("An OTP has been sent to %s to reset your password.", req.Email),
		})
	case "confirm":
		var req domain.ConfirmPasswordResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.ConfirmPasswordReset(r.Context(), req.Role, req.Email, req.OTP, req.NewPassword); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Password reset successfully! Please login."})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
