package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vaxledger/internal/audit"
	"vaxledger/internal/record/models"
	"vaxledger/internal/record/service"
	"vaxledger/internal/transport/http/shared"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/requestcontext"
)

// Service defines the interface for record ledger operations.
type Service interface {
	RegisterChild(ctx context.Context, name string, dob time.Time, parentName, contactInfo string, parentID id.Identity, recordURI string) (*models.ChildRecord, error)
	UpdateChildInfo(ctx context.Context, childID id.ChildID, contactInfo string) (*models.ChildRecord, error)
	RecordVaccination(ctx context.Context, childID id.ChildID, vaccine, batch string, nextDue time.Time, referenceHash string) (models.VaccinationEntry, int, error)

	Child(ctx context.Context, childID id.ChildID) (*models.ChildRecord, error)
	History(ctx context.Context, childID id.ChildID) ([]models.VaccinationEntry, error)
	VaccinationCount(ctx context.Context, childID id.ChildID) (int, error)
	HasVaccine(ctx context.Context, childID id.ChildID, vaccine string) (bool, error)
	UpcomingVaccinations(ctx context.Context, childID id.ChildID) ([]service.UpcomingDose, error)
	VaccinationReminders(ctx context.Context, childID id.ChildID) ([]time.Time, error)
	GenerateVerificationSummary(ctx context.Context, childID id.ChildID) (service.VerificationSummary, error)
	RecordURI(ctx context.Context, childID id.ChildID) (string, error)
	ChildrenOf(ctx context.Context, parentID id.Identity) ([]id.ChildID, error)
	Events(ctx context.Context, childID id.ChildID) ([]audit.Event, error)
}

// Handler handles child record and vaccination history endpoints.
type Handler struct {
	logger *slog.Logger
	record Service
}

// New creates a new record Handler.
func New(record Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, record: record}
}

// RegisterProtected mounts the routes requiring an authenticated caller.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/children", h.handleRegisterChild)
	r.Patch("/children/{id}/contact", h.handleUpdateContact)
	r.Post("/children/{id}/vaccinations", h.handleRecordVaccination)
}

// RegisterPublic mounts the read-only routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/children/{id}", h.handleGetChild)
	r.Get("/children/{id}/vaccinations", h.handleHistory)
	r.Get("/children/{id}/vaccinations/count", h.handleCount)
	r.Get("/children/{id}/vaccinations/has", h.handleHasVaccine)
	r.Get("/children/{id}/vaccinations/upcoming", h.handleUpcoming)
	r.Get("/children/{id}/reminders", h.handleReminders)
	r.Get("/children/{id}/summary", h.handleSummary)
	r.Get("/children/{id}/record-uri", h.handleRecordURI)
	r.Get("/children/{id}/events", h.handleEvents)
	r.Get("/parents/{id}/children", h.handleParentChildren)
}

type registerChildRequest struct {
	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	ParentName  string    `json:"parent_name"`
	ContactInfo string    `json:"contact_info"`
	ParentID    string    `json:"parent_id"`
	RecordURI   string    `json:"record_uri"`
}

func (h *Handler) handleRegisterChild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid child registration request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	parentID, err := id.ParseIdentity(req.ParentID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidParent, "invalid parent identity"))
		return
	}

	record, err := h.record.RegisterChild(ctx, req.Name, req.DateOfBirth, req.ParentName, req.ContactInfo, parentID, req.RecordURI)
	if err != nil {
		h.logRejection(ctx, "register child", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, record)
}

type updateContactRequest struct {
	ContactInfo string `json:"contact_info"`
}

func (h *Handler) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	var req updateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.record.UpdateChildInfo(ctx, childID, req.ContactInfo)
	if err != nil {
		h.logRejection(ctx, "update contact info", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

type recordVaccinationRequest struct {
	Vaccine       string    `json:"vaccine"`
	Batch         string    `json:"batch"`
	NextDue       time.Time `json:"next_due,omitzero"`
	ReferenceHash string    `json:"reference_hash"`
}

type recordVaccinationResponse struct {
	Position int                     `json:"position"`
	Entry    models.VaccinationEntry `json:"entry"`
}

func (h *Handler) handleRecordVaccination(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	var req recordVaccinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	entry, position, err := h.record.RecordVaccination(ctx, childID, req.Vaccine, req.Batch, req.NextDue, req.ReferenceHash)
	if err != nil {
		h.logRejection(ctx, "record vaccination", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, recordVaccinationResponse{Position: position, Entry: entry})
}

func (h *Handler) handleGetChild(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	record, err := h.record.Child(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	history, err := h.record.History(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	count, err := h.record.VaccinationCount(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleHasVaccine(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	vaccine := r.URL.Query().Get("vaccine")
	if vaccine == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "vaccine query parameter is required"))
		return
	}

	has, err := h.record.HasVaccine(r.Context(), childID, vaccine)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"has_vaccine": has})
}

func (h *Handler) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	upcoming, err := h.record.UpcomingVaccinations(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"upcoming": upcoming})
}

func (h *Handler) handleReminders(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	reminders, err := h.record.VaccinationReminders(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"reminders": reminders})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	summary, err := h.record.GenerateVerificationSummary(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleRecordURI(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	uri, err := h.record.RecordURI(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"record_uri": uri})
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childID(w, r)
	if !ok {
		return
	}

	events, err := h.record.Events(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleParentChildren(w http.ResponseWriter, r *http.Request) {
	parentID, err := id.ParseIdentity(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid parent identity"))
		return
	}

	children, err := h.record.ChildrenOf(r.Context(), parentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"children": children})
}

func (h *Handler) childID(w http.ResponseWriter, r *http.Request) (id.ChildID, bool) {
	childID, err := id.ParseChildID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid record identifier"))
		return 0, false
	}
	return childID, true
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
