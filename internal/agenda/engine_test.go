package agenda_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Djo9111/reporting-front/internal/agenda"
	"github.com/Djo9111/reporting-front/internal/testfixtures"
)

func newEngine(backend *testfixtures.FakeBackend) *agenda.Engine {
	ids := testfixtures.NewIDGenerator("provisoire")
	return agenda.NewEngine(backend, "mdupont", ids.NextFunc(), nil)
}

func mustLoad(t *testing.T, engine *agenda.Engine) {
	t.Helper()
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
}

func TestEngine_Load(t *testing.T) {
	t.Parallel()

	t.Run("replaces the set wholesale", func(t *testing.T) {
		t.Parallel()

		first := testfixtures.NewAppointmentFixture()
		backend := testfixtures.NewFakeBackend(first)
		engine := newEngine(backend)
		mustLoad(t, engine)

		if got := len(engine.Appointments()); got != 1 {
			t.Fatalf("expected 1 appointment, got %d", got)
		}
		if !engine.Loaded() {
			t.Fatal("engine should report loaded")
		}

		second := testfixtures.NewAppointmentFixture()
		backend.Appointments = []agenda.Appointment{second}
		mustLoad(t, engine)

		appts := engine.Appointments()
		if len(appts) != 1 || appts[0].ID != second.ID {
			t.Fatalf("expected wholesale replacement, got %+v", appts)
		}
	})

	t.Run("keeps the prior set on failure", func(t *testing.T) {
		t.Parallel()

		appt := testfixtures.NewAppointmentFixture()
		backend := testfixtures.NewFakeBackend(appt)
		engine := newEngine(backend)
		mustLoad(t, engine)

		backend.ListErr = errors.New("backend down")
		err := engine.Load(context.Background())
		if !errors.Is(err, agenda.ErrLoadFailed) {
			t.Fatalf("expected ErrLoadFailed, got %v", err)
		}
		if got := len(engine.Appointments()); got != 1 {
			t.Fatalf("prior set lost on failed reload: %d appointments", got)
		}
	})
}

func TestEngine_CreationFlow(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	client := agenda.Client{ID: 7, Name: "Boulangerie Martin", ClientNumber: "C100"}

	t.Run("full flow from slot selection to authoritative insert", func(t *testing.T) {
		t.Parallel()

		backend := testfixtures.NewFakeBackend()
		backend.NextID = 54
		engine := newEngine(backend)
		mustLoad(t, engine)

		pending, err := engine.ProposeCreation(&client, start)
		if err != nil {
			t.Fatalf("ProposeCreation failed: %v", err)
		}
		if !pending.ProposedEnd.Equal(start.Add(30 * time.Minute)) {
			t.Fatalf("proposed end = %v, want slot start plus 30 minutes", pending.ProposedEnd)
		}

		appt, err := engine.ConfirmCreation(context.Background(), "Suivi annuel", "")
		if err != nil {
			t.Fatalf("ConfirmCreation failed: %v", err)
		}

		if appt.ID != 55 {
			t.Errorf("id = %d, want the backend assigned 55", appt.ID)
		}
		if appt.ClientNumber != "C100" || appt.Subject != "Suivi annuel" {
			t.Errorf("unexpected appointment: %+v", appt)
		}
		if appt.Status != agenda.StatusPlanned {
			t.Errorf("status = %q, want %q", appt.Status, agenda.StatusPlanned)
		}
		if !appt.End().Equal(start.Add(30 * time.Minute)) {
			t.Errorf("end = %v, want 10:30", appt.End())
		}

		if len(backend.CreateRequests) != 1 {
			t.Fatalf("expected one create call, got %d", len(backend.CreateRequests))
		}
		req := backend.CreateRequests[0]
		if req.Kind != agenda.KindInPerson || req.DurationMinutes != agenda.DefaultDurationMinutes {
			t.Errorf("unexpected create request: %+v", req)
		}
		if req.ContactPlanID != 7 || req.OwnerUsername != "mdupont" {
			t.Errorf("unexpected identifiers in create request: %+v", req)
		}

		if _, staged := engine.PendingCreation(); staged {
			t.Error("pending creation should be cleared after confirmation")
		}
		if got := len(engine.Appointments()); got != 1 {
			t.Errorf("expected the new appointment in the set, got %d", got)
		}
	})

	t.Run("nil client is rejected", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(testfixtures.NewFakeBackend())
		if _, err := engine.ProposeCreation(nil, start); !errors.Is(err, agenda.ErrNoClientSelected) {
			t.Fatalf("expected ErrNoClientSelected, got %v", err)
		}
	})

	t.Run("empty subject never reaches the backend", func(t *testing.T) {
		t.Parallel()

		backend := testfixtures.NewFakeBackend()
		engine := newEngine(backend)
		if _, err := engine.ProposeCreation(&client, start); err != nil {
			t.Fatalf("ProposeCreation failed: %v", err)
		}

		_, err := engine.ConfirmCreation(context.Background(), "   ", "notes")
		var vErr *agenda.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["objet"]; !ok {
			t.Fatalf("expected objet field error, got %+v", vErr.FieldErrors)
		}
		if len(backend.CreateRequests) != 0 {
			t.Fatalf("backend must not be called for an empty subject, got %d calls", len(backend.CreateRequests))
		}
		if _, staged := engine.PendingCreation(); !staged {
			t.Error("pending creation must survive a validation failure")
		}
	})

	t.Run("backend failure retains the pending creation", func(t *testing.T) {
		t.Parallel()

		backend := testfixtures.NewFakeBackend()
		backend.CreateErr = errors.New("timeout")
		engine := newEngine(backend)
		if _, err := engine.ProposeCreation(&client, start); err != nil {
			t.Fatalf("ProposeCreation failed: %v", err)
		}

		if _, err := engine.ConfirmCreation(context.Background(), "Suivi annuel", ""); !errors.Is(err, agenda.ErrCreateFailed) {
			t.Fatalf("expected ErrCreateFailed, got %v", err)
		}
		if _, staged := engine.PendingCreation(); !staged {
			t.Error("pending creation must survive a backend failure")
		}
		if got := len(engine.Appointments()); got != 0 {
			t.Errorf("no appointment may appear after a failed create, got %d", got)
		}
	})

	t.Run("confirming without a staged creation is rejected", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(testfixtures.NewFakeBackend())
		if _, err := engine.ConfirmCreation(context.Background(), "Suivi", ""); !errors.Is(err, agenda.ErrNoPendingCreation) {
			t.Fatalf("expected ErrNoPendingCreation, got %v", err)
		}
	})

	t.Run("cancelling discards the staged creation silently", func(t *testing.T) {
		t.Parallel()

		backend := testfixtures.NewFakeBackend()
		engine := newEngine(backend)
		if _, err := engine.ProposeCreation(&client, start); err != nil {
			t.Fatalf("ProposeCreation failed: %v", err)
		}

		engine.CancelPending()
		if _, staged := engine.PendingCreation(); staged {
			t.Error("pending creation should be gone")
		}
		if len(backend.CreateRequests) != 0 {
			t.Errorf("cancel must not call the backend, got %d calls", len(backend.CreateRequests))
		}
	})
}

func TestEngine_ProvisionalIsolation(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	persisted := testfixtures.NewAppointmentFixture()
	backend := testfixtures.NewFakeBackend(persisted)
	engine := newEngine(backend)
	mustLoad(t, engine)

	client := testfixtures.NewClientFixture()
	if _, err := engine.ProposeCreation(&client, start); err != nil {
		t.Fatalf("ProposeCreation failed: %v", err)
	}

	if got := len(engine.Appointments()); got != 1 {
		t.Fatalf("provisional leaked into the persisted set: %d entries", got)
	}

	events := engine.VisibleEvents()
	if len(events) != 2 {
		t.Fatalf("expected persisted plus provisional, got %d", len(events))
	}

	var provisional *agenda.VisibleEvent
	for i := range events {
		if events[i].Provisional {
			provisional = &events[i]
		}
	}
	if provisional == nil {
		t.Fatal("no provisional event in the projection")
	}
	if provisional.ClientNumber != client.ClientNumber {
		t.Errorf("provisional client number = %q, want %q", provisional.ClientNumber, client.ClientNumber)
	}
	if provisional.ID != "provisoire-1" {
		t.Errorf("provisional id = %q, want the injected generator output", provisional.ID)
	}

	engine.CancelPending()
	if got := len(engine.VisibleEvents()); got != 1 {
		t.Errorf("provisional should vanish after cancel, got %d events", got)
	}
}

func TestEngine_EditFlow(t *testing.T) {
	t.Parallel()

	original := testfixtures.NewAppointmentFixture(
		testfixtures.WithSlot(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), 30),
		testfixtures.WithSubject("Suivi annuel"),
	)

	t.Run("duration-only edit sends the time pair and nothing else", func(t *testing.T) {
		t.Parallel()

		backend := testfixtures.NewFakeBackend(original)
		engine := newEngine(backend)
		mustLoad(t, engine)

		edit, err := engine.SelectForEdit(original.ID)
		if err != nil {
			t.Fatalf("SelectForEdit failed: %v", err)
		}

		draft := edit.Draft
		draft.DurationMinutes = 45
		if err := engine.UpdateEditDraft(draft); err != nil {
			t.Fatalf("UpdateEditDraft failed: %v", err)
		}

		merged, err := engine.ConfirmEdit(context.Background())
		if err != nil {
			t.Fatalf("ConfirmEdit failed: %v", err)
		}

		patch, ok := backend.LastPatch()
		if !ok {
			t.Fatal("no patch sent")
		}
		if patch.Subject != nil || patch.Notes != nil || patch.Status != nil {
			t.Errorf("text fields leaked into a duration-only patch: %+v", patch)
		}
		if patch.Start == nil || patch.DurationMinutes == nil {
			t.Fatalf("time pair missing from patch: %+v", patch)
		}
		if *patch.DurationMinutes != 45 || !patch.Start.Equal(original.Start) {
			t.Errorf("unexpected time pair: start=%v duration=%d", *patch.Start, *patch.DurationMinutes)
		}

		if merged.DurationMinutes != 45 || merged.Subject != "Suivi annuel" {
			t.Errorf("merge drifted: %+v", merged)
		}
		if _, staged := engine.PendingEdit(); staged {
			t.Error("pending edit should be cleared after confirmation")
		}
	})

	t.Run("response values win during the merge", func(t *testing.T) {
		t.Parallel()

		backend := testfixtures.NewFakeBackend(original)
		normalized := "SUIVI ANNUEL"
		backend.UpdateResponse = agenda.Update{Subject: &normalized}
		engine := newEngine(backend)
		mustLoad(t, engine)

		if _, err := engine.SelectForEdit(original.ID); err != nil {
			t.Fatalf("SelectForEdit failed: %v", err)
		}
		edit, _ := engine.PendingEdit()
		draft := edit.Draft
		draft.Subject = "suivi annuel"
		if err := engine.UpdateEditDraft(draft); err != nil {
			t.Fatalf("UpdateEditDraft failed: %v", err)
		}

		merged, err := engine.ConfirmEdit(context.Background())
		if err != nil {
			t.Fatalf("ConfirmEdit failed: %v", err)
		}
		if merged.Subject != normalized {
			t.Errorf("subject = %q, want the backend normalized value", merged.Subject)
		}
	})

	t.Run("failed update keeps the draft and the original", func(t *testing.T) {
		t.Parallel()

		backend := testfixtures.NewFakeBackend(original)
		backend.UpdateErr = errors.New("conflict")
		engine := newEngine(backend)
		mustLoad(t, engine)

		if _, err := engine.SelectForEdit(original.ID); err != nil {
			t.Fatalf("SelectForEdit failed: %v", err)
		}
		edit, _ := engine.PendingEdit()
		draft := edit.Draft
		draft.Subject = "Point trimestriel"
		if err := engine.UpdateEditDraft(draft); err != nil {
			t.Fatalf("UpdateEditDraft failed: %v", err)
		}

		if _, err := engine.ConfirmEdit(context.Background()); !errors.Is(err, agenda.ErrUpdateFailed) {
			t.Fatalf("expected ErrUpdateFailed, got %v", err)
		}

		retained, staged := engine.PendingEdit()
		if !staged {
			t.Fatal("pending edit must survive a backend failure")
		}
		if retained.Draft.Subject != "Point trimestriel" {
			t.Errorf("draft lost: %+v", retained.Draft)
		}

		appts := engine.Appointments()
		if len(appts) != 1 || appts[0].Subject != "Suivi annuel" {
			t.Errorf("original mutated by a failed edit: %+v", appts)
		}
	})

	t.Run("discarding the draft never touches the original", func(t *testing.T) {
		t.Parallel()

		backend := testfixtures.NewFakeBackend(original)
		engine := newEngine(backend)
		mustLoad(t, engine)

		if _, err := engine.SelectForEdit(original.ID); err != nil {
			t.Fatalf("SelectForEdit failed: %v", err)
		}
		edit, _ := engine.PendingEdit()
		draft := edit.Draft
		draft.Subject = "Autre objet"
		draft.Status = agenda.StatusCancelled
		if err := engine.UpdateEditDraft(draft); err != nil {
			t.Fatalf("UpdateEditDraft failed: %v", err)
		}

		engine.CancelEdit()
		if _, staged := engine.PendingEdit(); staged {
			t.Error("pending edit should be gone")
		}
		appts := engine.Appointments()
		if appts[0].Subject != "Suivi annuel" || appts[0].Status != agenda.StatusPlanned {
			t.Errorf("original mutated by a cancelled edit: %+v", appts[0])
		}
		if len(backend.Patches) != 0 {
			t.Errorf("cancel must not call the backend, got %d patches", len(backend.Patches))
		}
	})

	t.Run("unknown appointment is rejected", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(testfixtures.NewFakeBackend(original))
		mustLoad(t, engine)
		if _, err := engine.SelectForEdit(99999); !errors.Is(err, agenda.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("updating a draft without a selection is rejected", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(testfixtures.NewFakeBackend())
		if err := engine.UpdateEditDraft(agenda.EditDraft{}); !errors.Is(err, agenda.ErrNoPendingEdit) {
			t.Fatalf("expected ErrNoPendingEdit, got %v", err)
		}
	})
}

func TestEngine_OverlapWarnings(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := testfixtures.NewAppointmentFixture(testfixtures.WithSlot(base, 60))
	b := testfixtures.NewAppointmentFixture(testfixtures.WithSlot(base.Add(30*time.Minute), 30))
	c := testfixtures.NewAppointmentFixture(testfixtures.WithSlot(base.Add(2*time.Hour), 30))
	cancelled := testfixtures.NewAppointmentFixture(
		testfixtures.WithSlot(base.Add(15*time.Minute), 30),
		testfixtures.WithStatus(agenda.StatusCancelled),
	)

	backend := testfixtures.NewFakeBackend(a, b, c, cancelled)
	engine := newEngine(backend)
	mustLoad(t, engine)

	warnings := engine.OverlapWarnings()
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %+v", warnings)
	}
	if warnings[0].AppointmentID != a.ID || warnings[0].WithID != b.ID {
		t.Errorf("unexpected pair: %+v", warnings[0])
	}
}
