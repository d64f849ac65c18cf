package agenda

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RemoteService captures the appointment operations the engine delegates to
// the backend.
type RemoteService interface {
	ListAppointments(ctx context.Context, owner string) ([]Appointment, error)
	CreateAppointment(ctx context.Context, req CreateRequest) (Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, patch Patch) (Update, error)
}

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingCreate
	pendingEdit
)

// Engine holds the in-memory model of one manager's appointment set together
// with the single staged creation or edit. The visible set always reflects
// either the last successful load or a successful create/update, never a
// half-applied edit.
//
// Each operator drives their engine from a single UI, but the gateway host is
// concurrent, so every operation is serialized behind a mutex.
type Engine struct {
	mu sync.Mutex

	remote        RemoteService
	owner         string
	provisionalID func() string
	logger        *slog.Logger

	appointments map[int64]Appointment
	loaded       bool

	kind     pendingKind
	creation PendingCreation
	edit     PendingEdit
}

// NewEngine wires an engine for the given appointment owner.
func NewEngine(remote RemoteService, owner string, provisionalID func() string, logger *slog.Logger) *Engine {
	if provisionalID == nil {
		provisionalID = func() string { return "provisoire" }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		remote:        remote,
		owner:         owner,
		provisionalID: provisionalID,
		logger:        logger.With("component", "agenda", "owner", owner),
		appointments:  make(map[int64]Appointment),
	}
}

// Owner returns the manager username the engine belongs to.
func (e *Engine) Owner() string {
	if e == nil {
		return ""
	}
	return e.owner
}

// Loaded reports whether an initial load has succeeded.
func (e *Engine) Loaded() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Load fetches all appointments for the owner and replaces the in-memory set
// wholesale. On failure the prior set is retained: a transient fetch failure
// must never empty a populated calendar.
func (e *Engine) Load(ctx context.Context) error {
	if e == nil || e.remote == nil {
		return fmt.Errorf("agenda engine not configured")
	}

	fetched, err := e.remote.ListAppointments(ctx, e.owner)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to load appointments", "error", err, "error_kind", ErrorKind(ErrLoadFailed))
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	replacement := make(map[int64]Appointment, len(fetched))
	for _, appt := range fetched {
		replacement[appt.ID] = appt
	}

	e.mu.Lock()
	e.appointments = replacement
	e.loaded = true
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "appointments loaded", "count", len(replacement))
	return nil
}

// ProposeCreation stages a provisional appointment for the selected client at
// the chosen slot. The proposed end is fixed at the default duration past the
// slot start. Any prior pending creation or edit is discarded.
func (e *Engine) ProposeCreation(client *Client, slotStart time.Time) (PendingCreation, error) {
	if e == nil {
		return PendingCreation{}, fmt.Errorf("agenda engine not configured")
	}
	if client == nil {
		return PendingCreation{}, ErrNoClientSelected
	}

	creation := PendingCreation{
		Client:        *client,
		ProposedStart: slotStart,
		ProposedEnd:   slotStart.Add(DefaultDurationMinutes * time.Minute),
	}

	e.mu.Lock()
	e.kind = pendingCreate
	e.creation = creation
	e.edit = PendingEdit{}
	e.mu.Unlock()

	return creation, nil
}

// ConfirmCreation submits the staged creation to the remote service. The
// authoritative response is inserted into the appointment set and the pending
// state cleared. On failure the pending creation is left intact so the
// operator can retry without re-entering the slot.
func (e *Engine) ConfirmCreation(ctx context.Context, subject, notes string) (Appointment, error) {
	if e == nil || e.remote == nil {
		return Appointment{}, fmt.Errorf("agenda engine not configured")
	}

	e.mu.Lock()
	if e.kind != pendingCreate {
		e.mu.Unlock()
		return Appointment{}, ErrNoPendingCreation
	}
	creation := e.creation
	e.mu.Unlock()

	if strings.TrimSpace(subject) == "" {
		vErr := &ValidationError{}
		vErr.add("objet", "subject is required")
		return Appointment{}, vErr
	}

	req := CreateRequest{
		ContactPlanID:   creation.Client.ID,
		OwnerUsername:   e.owner,
		ClientNumber:    creation.Client.ClientNumber,
		Start:           creation.ProposedStart,
		DurationMinutes: DefaultDurationMinutes,
		Kind:            KindInPerson,
		Subject:         subject,
		Notes:           notes,
		Status:          StatusPlanned,
	}

	created, err := e.remote.CreateAppointment(ctx, req)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to create appointment", "error", err, "error_kind", ErrorKind(ErrCreateFailed))
		return Appointment{}, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	e.mu.Lock()
	e.appointments[created.ID] = created
	e.kind = pendingNone
	e.creation = PendingCreation{}
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "appointment created", "appointment_id", created.ID, "client_number", created.ClientNumber)
	return created, nil
}

// CancelPending clears any staged creation or edit. No side effects, no
// network call.
func (e *Engine) CancelPending() {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.kind = pendingNone
	e.creation = PendingCreation{}
	e.edit = PendingEdit{}
	e.mu.Unlock()
}

// SelectForEdit snapshots the mutable fields of the given appointment into a
// working copy, seeding the draft's start and duration from the appointment.
// Any prior pending state is replaced.
func (e *Engine) SelectForEdit(id int64) (PendingEdit, error) {
	if e == nil {
		return PendingEdit{}, fmt.Errorf("agenda engine not configured")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	original, ok := e.appointments[id]
	if !ok {
		return PendingEdit{}, ErrNotFound
	}

	edit := PendingEdit{
		Original: original,
		Draft: EditDraft{
			Subject:         original.Subject,
			Notes:           original.Notes,
			Status:          original.Status,
			Start:           original.Start,
			DurationMinutes: durationOrDefault(original),
		},
	}

	e.kind = pendingEdit
	e.edit = edit
	e.creation = PendingCreation{}

	return edit, nil
}

// UpdateEditDraft replaces the working copy's field values. The original
// snapshot is untouched.
func (e *Engine) UpdateEditDraft(draft EditDraft) error {
	if e == nil {
		return fmt.Errorf("agenda engine not configured")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.kind != pendingEdit {
		return ErrNoPendingEdit
	}
	e.edit.Draft = draft
	return nil
}

// ConfirmEdit computes the minimal diff between the working copy and the
// original, submits it as a partial update, and merges the authoritative
// response over the prior values. On failure the pending edit and the
// original appointment are untouched.
func (e *Engine) ConfirmEdit(ctx context.Context) (Appointment, error) {
	if e == nil || e.remote == nil {
		return Appointment{}, fmt.Errorf("agenda engine not configured")
	}

	e.mu.Lock()
	if e.kind != pendingEdit {
		e.mu.Unlock()
		return Appointment{}, ErrNoPendingEdit
	}
	edit := e.edit
	e.mu.Unlock()

	patch := buildPatch(edit.Original, edit.Draft)

	update, err := e.remote.UpdateAppointment(ctx, edit.Original.ID, patch)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to update appointment", "appointment_id", edit.Original.ID, "error", err, "error_kind", ErrorKind(ErrUpdateFailed))
		return Appointment{}, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}

	merged := applyUpdate(edit.Original, patch, update)

	e.mu.Lock()
	e.appointments[merged.ID] = merged
	e.kind = pendingNone
	e.edit = PendingEdit{}
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "appointment updated", "appointment_id", merged.ID)
	return merged, nil
}

// CancelEdit discards the working copy. Identical contract to CancelPending,
// scoped to edit mode.
func (e *Engine) CancelEdit() {
	e.CancelPending()
}

// PendingCreation returns the staged creation, if any.
func (e *Engine) PendingCreation() (PendingCreation, bool) {
	if e == nil {
		return PendingCreation{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.kind != pendingCreate {
		return PendingCreation{}, false
	}
	return e.creation, true
}

// PendingEdit returns the staged edit, if any.
func (e *Engine) PendingEdit() (PendingEdit, bool) {
	if e == nil {
		return PendingEdit{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.kind != pendingEdit {
		return PendingEdit{}, false
	}
	return e.edit, true
}

// Appointments returns a copy of the in-memory set ordered by start time.
func (e *Engine) Appointments() []Appointment {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortedLocked()
}

// VisibleEvents projects the appointment set for presentation, appending one
// synthetic provisional record while a creation is staged. The projection is
// recomputed on every call and never persisted.
func (e *Engine) VisibleEvents() []VisibleEvent {
	if e == nil {
		return nil
	}

	e.mu.Lock()
	ordered := e.sortedLocked()
	kind := e.kind
	creation := e.creation
	e.mu.Unlock()

	events := make([]VisibleEvent, 0, len(ordered)+1)
	for _, appt := range ordered {
		events = append(events, VisibleEvent{
			ID:           strconv.FormatInt(appt.ID, 10),
			Appointment:  appt,
			ClientNumber: appt.ClientNumber,
		})
	}

	if kind == pendingCreate {
		events = append(events, VisibleEvent{
			ID: e.provisionalID(),
			Appointment: Appointment{
				ClientNumber:    creation.Client.ClientNumber,
				ContactPlanID:   creation.Client.ID,
				OwnerUsername:   e.owner,
				Start:           creation.ProposedStart,
				DurationMinutes: DefaultDurationMinutes,
				Status:          StatusPlanned,
			},
			Provisional:  true,
			ClientNumber: creation.Client.ClientNumber,
		})
	}

	return events
}

// OverlapWarnings reports pairs of the owner's appointments whose time ranges
// intersect. Cancelled appointments do not count.
func (e *Engine) OverlapWarnings() []OverlapWarning {
	if e == nil {
		return nil
	}

	ordered := e.Appointments()

	var warnings []OverlapWarning
	for i := 0; i < len(ordered); i++ {
		if ordered[i].Status == StatusCancelled {
			continue
		}
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].Status == StatusCancelled {
				continue
			}
			if !ordered[j].Start.Before(ordered[i].End()) {
				break
			}
			warnings = append(warnings, OverlapWarning{
				AppointmentID: ordered[i].ID,
				WithID:        ordered[j].ID,
			})
		}
	}
	return warnings
}

func (e *Engine) sortedLocked() []Appointment {
	ordered := make([]Appointment, 0, len(e.appointments))
	for _, appt := range e.appointments {
		ordered = append(ordered, appt)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})
	return ordered
}

func durationOrDefault(appt Appointment) int {
	if appt.DurationMinutes >= 1 {
		return appt.DurationMinutes
	}
	return DefaultDurationMinutes
}
