package handler

import (
	"net/http"

	"thesis-manager/internal/model"
	"thesis-manager/internal/service"
	"thesis-manager/internal/validation"
)

type PasswordHandler struct {
	service   *service.PasswordService
	validator *validation.Validator
}

func NewPasswordHandler(service *service.PasswordService, validator *validation.Validator) *PasswordHandler {
	return &PasswordHandler{service: service, validator: validator}
}

func (h *PasswordHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var payload model.PasswordResetRequest
	if err := decodeBody(w, r, h.validator, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.RequestReset(r.Context(), payload.Email); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (h *PasswordHandler) VerifyReset(w http.ResponseWriter, r *http.Request) {
	var payload model.PasswordResetVerifyRequest
	if err := decodeBody(w, r, h.validator, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.VerifyReset(r.Context(), payload.Email, payload.OTPCode); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (h *PasswordHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.ChangePasswordRequest
	if err := decodeBody(w, r, h.validator, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), p, payload.CurrentPassword, payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}
