package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Djo9111/reporting-front/internal/agenda"
	"github.com/Djo9111/reporting-front/internal/application"
	"github.com/Djo9111/reporting-front/internal/calendar"
)

// AgendaHandler drives the appointment workflow: loading the agenda, staging
// creations and edits, and confirming them against the backend.
type AgendaHandler struct {
	registry  *agenda.Registry
	clients   clientService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewAgendaHandler(registry *agenda.Registry, clients clientService, now func() time.Time, logger *slog.Logger) *AgendaHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &AgendaHandler{
		registry:  registry,
		clients:   clients,
		now:       now,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *AgendaHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AgendaHandler", operation, attrs...)
}

// engineFor resolves the engine serving the request's manager.
func (h *AgendaHandler) engineFor(r *http.Request) (*agenda.Engine, bool) {
	manager := requestedManager(r)
	if manager == "" {
		return nil, false
	}
	return h.registry.EngineFor(manager), true
}

type overlapWarningDTO struct {
	AppointmentID int64 `json:"rendez_vous_id"`
	WithID        int64 `json:"en_conflit_avec_id"`
}

type agendaResponse struct {
	Manager  string              `json:"gestionnaire"`
	Events   []calendar.Event    `json:"evenements"`
	Week     []calendar.Day      `json:"semaine"`
	Warnings []overlapWarningDTO `json:"avertissements"`
}

// Get returns the visible agenda. The backend is consulted on the first call
// for a manager and whenever reload=true.
func (h *AgendaHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	engine, ok := h.engineFor(r)
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}
	logger := h.log(r.Context(), "Get", "manager", engine.Owner())

	if !engine.Loaded() || r.URL.Query().Get("reload") == "true" {
		if err := engine.Load(r.Context()); err != nil {
			logger.ErrorContext(r.Context(), "agenda load failed", "error", err, "error_kind", agenda.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}

	reference := h.now()
	if raw := r.URL.Query().Get("semaine"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			reference = parsed
		}
	}

	events := calendar.Project(engine.VisibleEvents())
	warnings := engine.OverlapWarnings()
	warningDTOs := make([]overlapWarningDTO, 0, len(warnings))
	for _, warning := range warnings {
		warningDTOs = append(warningDTOs, overlapWarningDTO{
			AppointmentID: warning.AppointmentID,
			WithID:        warning.WithID,
		})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, agendaResponse{
		Manager:  engine.Owner(),
		Events:   events,
		Week:     calendar.Week(reference, events),
		Warnings: warningDTOs,
	})
}

type proposeCreationRequest struct {
	ClientID int64  `json:"client_id"`
	Start    string `json:"date_debut"`
}

type pendingCreationDTO struct {
	ClientNumber string `json:"numero_client"`
	ClientName   string `json:"client"`
	Start        string `json:"date_debut"`
	End          string `json:"date_fin"`
}

// ProposeCreation stages an appointment creation for the selected client and
// calendar slot.
func (h *AgendaHandler) ProposeCreation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	engine, ok := h.engineFor(r)
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}
	logger := h.log(r.Context(), "ProposeCreation", "manager", engine.Owner())

	var req proposeCreationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"date_debut": "start is required"}}
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	client, err := h.lookupClient(r.Context(), engine.Owner(), req.ClientID)
	if err != nil {
		logger.ErrorContext(r.Context(), "client lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	pending, err := engine.ProposeCreation(client, start)
	if err != nil {
		logger.ErrorContext(r.Context(), "creation proposal rejected", "error", err, "error_kind", agenda.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("client_number", pending.Client.ClientNumber).InfoContext(r.Context(), "creation staged")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, pendingCreationDTO{
		ClientNumber: pending.Client.ClientNumber,
		ClientName:   pending.Client.Name,
		Start:        pending.ProposedStart.Format(time.RFC3339),
		End:          pending.ProposedEnd.Format(time.RFC3339),
	})
}

// lookupClient resolves a contact by identifier within the manager's list. A
// zero identifier means no client was selected.
func (h *AgendaHandler) lookupClient(ctx context.Context, manager string, clientID int64) (*agenda.Client, error) {
	if clientID == 0 || h.clients == nil {
		return nil, nil
	}
	contacts, err := h.clients.ListClients(ctx, application.ClientListParams{Manager: manager})
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].ID == clientID {
			return &contacts[i], nil
		}
	}
	return nil, nil
}

type confirmCreationRequest struct {
	Subject string `json:"objet"`
	Notes   string `json:"commentaires"`
}

type appointmentDTO struct {
	ID              int64  `json:"id"`
	ClientNumber    string `json:"numero_client"`
	Start           string `json:"date_debut"`
	DurationMinutes int    `json:"duree_minutes"`
	Subject         string `json:"objet"`
	Notes           string `json:"commentaires"`
	Status          string `json:"statut"`
}

func appointmentPayload(appt agenda.Appointment) appointmentDTO {
	return appointmentDTO{
		ID:              appt.ID,
		ClientNumber:    appt.ClientNumber,
		Start:           appt.Start.Format(time.RFC3339),
		DurationMinutes: appt.DurationMinutes,
		Subject:         appt.Subject,
		Notes:           appt.Notes,
		Status:          appt.Status,
	}
}

// ConfirmCreation submits the staged creation to the backend.
func (h *AgendaHandler) ConfirmCreation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	engine, ok := h.engineFor(r)
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}
	logger := h.log(r.Context(), "ConfirmCreation", "manager", engine.Owner())

	var req confirmCreationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	appt, err := engine.ConfirmCreation(r.Context(), req.Subject, req.Notes)
	if err != nil {
		logger.ErrorContext(r.Context(), "creation confirmation failed", "error", err, "error_kind", agenda.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("appointment_id", appt.ID).InfoContext(r.Context(), "appointment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, appointmentPayload(appt))
}

// CancelPending discards the staged creation.
func (h *AgendaHandler) CancelPending(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	engine, ok := h.engineFor(r)
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	engine.CancelPending()
	h.log(r.Context(), "CancelPending", "manager", engine.Owner()).InfoContext(r.Context(), "pending creation discarded")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type selectForEditRequest struct {
	AppointmentID int64 `json:"rendez_vous_id"`
}

type editDraftDTO struct {
	Subject         string `json:"objet"`
	Notes           string `json:"commentaires"`
	Status          string `json:"statut"`
	Start           string `json:"date_debut"`
	DurationMinutes int    `json:"duree_minutes"`
}

type pendingEditDTO struct {
	Original appointmentDTO `json:"original"`
	Draft    editDraftDTO   `json:"brouillon"`
}

func pendingEditPayload(edit agenda.PendingEdit) pendingEditDTO {
	return pendingEditDTO{
		Original: appointmentPayload(edit.Original),
		Draft: editDraftDTO{
			Subject:         edit.Draft.Subject,
			Notes:           edit.Draft.Notes,
			Status:          edit.Draft.Status,
			Start:           edit.Draft.Start.Format(time.RFC3339),
			DurationMinutes: edit.Draft.DurationMinutes,
		},
	}
}

// SelectForEdit opens an appointment for modification.
func (h *AgendaHandler) SelectForEdit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	engine, ok := h.engineFor(r)
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}
	logger := h.log(r.Context(), "SelectForEdit", "manager", engine.Owner())

	var req selectForEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.AppointmentID == 0 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	edit, err := engine.SelectForEdit(req.AppointmentID)
	if err != nil {
		logger.ErrorContext(r.Context(), "edit selection failed", "error", err, "error_kind", agenda.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("appointment_id", req.AppointmentID).InfoContext(r.Context(), "appointment opened for edit")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, pendingEditPayload(edit))
}

// UpdateEditDraft replaces the working copy's fields.
func (h *AgendaHandler) UpdateEditDraft(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	engine, ok := h.engineFor(r)
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}
	logger := h.log(r.Context(), "UpdateEditDraft", "manager", engine.Owner())

	var req editDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"date_debut": "start is required"}}
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	draft := agenda.EditDraft{
		Subject:         req.Subject,
		Notes:           req.Notes,
		Status:          req.Status,
		Start:           start,
		DurationMinutes: req.DurationMinutes,
	}
	if err := engine.UpdateEditDraft(draft); err != nil {
		logger.ErrorContext(r.Context(), "draft update rejected", "error", err, "error_kind", agenda.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ConfirmEdit diffs the working copy against the original and submits the
// partial update to the backend.
func (h *AgendaHandler) ConfirmEdit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	engine, ok := h.engineFor(r)
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}
	logger := h.log(r.Context(), "ConfirmEdit", "manager", engine.Owner())

	appt, err := engine.ConfirmEdit(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "edit confirmation failed", "error", err, "error_kind", agenda.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("appointment_id", appt.ID).InfoContext(r.Context(), "appointment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentPayload(appt))
}

// CancelEdit discards the working copy.
func (h *AgendaHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	engine, ok := h.engineFor(r)
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	engine.CancelEdit()
	h.log(r.Context(), "CancelEdit", "manager", engine.Owner()).InfoContext(r.Context(), "edit discarded")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
