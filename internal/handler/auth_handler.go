package handler

import (
	"net/http"

	"thesis-manager/internal/model"
	"thesis-manager/internal/service"
	"thesis-manager/internal/validation"
)

type AuthHandler struct {
	service   *service.AuthService
	accounts  *service.AccountService
	validator *validation.Validator
}

func NewAuthHandler(service *service.AuthService, accounts *service.AccountService, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{service: service, accounts: accounts, validator: validator}
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var payload model.AdminLoginRequest
	if err := decodeBody(w, r, h.validator, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.AdminLogin(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens)
}

func (h *AuthHandler) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeBody(w, r, h.validator, &payload); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.service.AdminRefresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, token)
}

func (h *AuthHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.AdminLogout(r.Context(), p.ID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (h *AuthHandler) UserLogin(w http.ResponseWriter, r *http.Request) {
	var payload model.UserLoginRequest
	if err := decodeBody(w, r, h.validator, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.UserLogin(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens)
}

func (h *AuthHandler) UserRefresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeBody(w, r, h.validator, &payload); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.service.UserRefresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, token)
}

func (h *AuthHandler) UserLogout(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.UserLogout(r.Context(), p.ID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.accounts.Me(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile)
}
