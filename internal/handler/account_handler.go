package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"thesis-manager/internal/model"
	"thesis-manager/internal/service"
	"thesis-manager/internal/validation"
)

type AccountHandler struct {
	service   *service.AccountService
	validator *validation.Validator
}

func NewAccountHandler(service *service.AccountService, validator *validation.Validator) *AccountHandler {
	return &AccountHandler{service: service, validator: validator}
}

func (h *AccountHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateUserRequest
	if err := decodeBody(w, r, h.validator, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user)
}

func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, users)
}

func (h *AccountHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var payload model.SetActiveRequest
	if err := decodeBody(w, r, h.validator, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.SetActive(r.Context(), chi.URLParam(r, "id"), *payload.Active); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}
