package testfixtures

import (
	"context"
	"sync"

	"github.com/Djo9111/reporting-front/internal/agenda"
)

// FakeBackend is a scripted in-memory stand-in for the remote appointment
// service. Tests preload appointments, script failures, and inspect the exact
// requests the code under test sent.
type FakeBackend struct {
	mu sync.Mutex

	Appointments []agenda.Appointment

	ListErr   error
	CreateErr error
	UpdateErr error

	// NextID numbers appointments created through the fake.
	NextID int64
	// UpdateResponse is returned verbatim from UpdateAppointment.
	UpdateResponse agenda.Update

	CreateRequests []agenda.CreateRequest
	UpdatedIDs     []int64
	Patches        []agenda.Patch
	ListCalls      int
}

// NewFakeBackend returns a fake preloaded with the given appointments.
func NewFakeBackend(appointments ...agenda.Appointment) *FakeBackend {
	return &FakeBackend{Appointments: appointments, NextID: 100}
}

func (f *FakeBackend) ListAppointments(_ context.Context, owner string) ([]agenda.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]agenda.Appointment, len(f.Appointments))
	copy(out, f.Appointments)
	return out, nil
}

func (f *FakeBackend) CreateAppointment(_ context.Context, req agenda.CreateRequest) (agenda.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateRequests = append(f.CreateRequests, req)
	if f.CreateErr != nil {
		return agenda.Appointment{}, f.CreateErr
	}
	f.NextID++
	return agenda.Appointment{
		ID:              f.NextID,
		ClientNumber:    req.ClientNumber,
		ContactPlanID:   req.ContactPlanID,
		OwnerUsername:   req.OwnerUsername,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		Kind:            req.Kind,
		Subject:         req.Subject,
		Notes:           req.Notes,
		Status:          req.Status,
	}, nil
}

func (f *FakeBackend) UpdateAppointment(_ context.Context, id int64, patch agenda.Patch) (agenda.Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdatedIDs = append(f.UpdatedIDs, id)
	f.Patches = append(f.Patches, patch)
	if f.UpdateErr != nil {
		return agenda.Update{}, f.UpdateErr
	}
	return f.UpdateResponse, nil
}

// LastPatch returns the most recent partial update, or false when none was
// sent.
func (f *FakeBackend) LastPatch() (agenda.Patch, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Patches) == 0 {
		return agenda.Patch{}, false
	}
	return f.Patches[len(f.Patches)-1], true
}
