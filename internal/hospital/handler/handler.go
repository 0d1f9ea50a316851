package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaxledger/internal/hospital/models"
	"vaxledger/internal/transport/http/shared"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/requestcontext"
)

// Service defines the interface for hospital ledger operations.
type Service interface {
	Register(ctx context.Context, name, license, contact string) (*models.Hospital, error)
	SetAuthorization(ctx context.Context, hospitalID id.Identity, authorized bool) (*models.Hospital, error)
	IsAuthorized(ctx context.Context, identity id.Identity) (bool, error)
	Find(ctx context.Context, identity id.Identity) (*models.Hospital, error)
}

// Handler handles hospital registration and authorization endpoints.
type Handler struct {
	logger   *slog.Logger
	hospital Service
}

// New creates a new hospital Handler.
func New(hospital Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, hospital: hospital}
}

// RegisterProtected mounts the routes requiring an authenticated caller.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/hospitals", h.handleRegister)
	r.Put("/hospitals/{id}/authorization", h.handleSetAuthorization)
}

// RegisterPublic mounts the read-only routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/hospitals/{id}", h.handleGet)
	r.Get("/hospitals/{id}/authorized", h.handleIsAuthorized)
}

type registerRequest struct {
	Name    string `json:"name"`
	License string `json:"license"`
	Contact string `json:"contact"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid hospital registration request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	hospital, err := h.hospital.Register(ctx, req.Name, req.License, req.Contact)
	if err != nil {
		h.logRejection(ctx, "register hospital", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, hospital)
}

type setAuthorizationRequest struct {
	Authorized bool `json:"authorized"`
}

func (h *Handler) handleSetAuthorization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hospitalID, err := id.ParseIdentity(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid hospital identity"))
		return
	}

	var req setAuthorizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	hospital, err := h.hospital.SetAuthorization(ctx, hospitalID, req.Authorized)
	if err != nil {
		h.logRejection(ctx, "set authorization", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, hospital)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	hospitalID, err := id.ParseIdentity(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid hospital identity"))
		return
	}

	hospital, err := h.hospital.Find(r.Context(), hospitalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, hospital)
}

func (h *Handler) handleIsAuthorized(w http.ResponseWriter, r *http.Request) {
	hospitalID, err := id.ParseIdentity(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid hospital identity"))
		return
	}

	ok, err := h.hospital.IsAuthorized(r.Context(), hospitalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"authorized": ok})
}

func (h *Handler) logRejection(ctx context.Context, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, op+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return
	}
	h.logger.WarnContext(ctx, op+" rejected",
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
