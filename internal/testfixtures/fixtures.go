package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Djo9111/reporting-front/internal/agenda"
	"github.com/Djo9111/reporting-front/internal/remote"
)

var (
	appointmentCounter uint64
	clientCounter      uint64
)

var referenceTime = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ------------------------- Appointment fixtures -------------------------

// AppointmentOption configures the generated appointment fixture.
type AppointmentOption func(*agenda.Appointment)

// NewAppointmentFixture returns a deterministic appointment with optional
// overrides. Successive calls yield distinct identifiers and staggered slots.
func NewAppointmentFixture(opts ...AppointmentOption) agenda.Appointment {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	appt := agenda.Appointment{
		ID:              int64(idx),
		ClientNumber:    fmt.Sprintf("C%03d", idx),
		ContactPlanID:   int64(1000 + idx),
		OwnerUsername:   "mdupont",
		Start:           referenceTime.Add(time.Duration(idx) * time.Hour),
		DurationMinutes: agenda.DefaultDurationMinutes,
		Kind:            agenda.KindInPerson,
		Subject:         fmt.Sprintf("Rendez-vous %03d", idx),
		Status:          agenda.StatusPlanned,
	}
	for _, opt := range opts {
		opt(&appt)
	}
	return appt
}

// WithID overrides the appointment identifier.
func WithID(id int64) AppointmentOption {
	return func(a *agenda.Appointment) { a.ID = id }
}

// WithOwner overrides the owning manager.
func WithOwner(owner string) AppointmentOption {
	return func(a *agenda.Appointment) { a.OwnerUsername = owner }
}

// WithSlot overrides the start and duration.
func WithSlot(start time.Time, minutes int) AppointmentOption {
	return func(a *agenda.Appointment) {
		a.Start = start
		a.DurationMinutes = minutes
	}
}

// WithSubject overrides the subject line.
func WithSubject(subject string) AppointmentOption {
	return func(a *agenda.Appointment) { a.Subject = subject }
}

// WithStatus overrides the appointment status.
func WithStatus(status string) AppointmentOption {
	return func(a *agenda.Appointment) { a.Status = status }
}

// --------------------------- Client fixtures ----------------------------

// NewClientFixture returns a deterministic contact entry.
func NewClientFixture() agenda.Client {
	idx := atomic.AddUint64(&clientCounter, 1)
	return agenda.Client{
		ID:            int64(idx),
		Name:          fmt.Sprintf("Client %03d", idx),
		ClientNumber:  fmt.Sprintf("C%03d", idx),
		Agency:        "Lyon Centre",
		ContactReason: "Renouvellement",
		Email:         fmt.Sprintf("client%03d@example.com", idx),
		Phone:         fmt.Sprintf("04720000%02d", idx%100),
	}
}

// -------------------------- Indicator fixtures --------------------------

// Indicators returns a small KPI set covering all attainment levels.
func Indicators() []remote.Indicator {
	return []remote.Indicator{
		{Name: "Credits", Objective: 100, Realization: 120},
		{Name: "Epargne", Objective: 200, Realization: 150},
		{Name: "Assurance", Objective: 50, Realization: 10},
	}
}
