package agenda

import "time"

// Appointment statuses as carried on the wire by the remote service.
const (
	StatusPlanned   = "PLANIFIE"
	StatusCompleted = "REALISE"
	StatusCancelled = "ANNULE"
)

// DefaultDurationMinutes is applied to newly proposed appointments.
const DefaultDurationMinutes = 30

// KindInPerson is the appointment kind assigned on creation. The field is a
// free-form string upstream, not a closed enum.
const KindInPerson = "physique"

// Appointment is the canonical in-memory representation of a persisted
// appointment. IDs are assigned by the remote service; an appointment without
// an ID has not been created yet.
type Appointment struct {
	ID              int64
	ClientNumber    string
	ContactPlanID   int64
	OwnerUsername   string
	Start           time.Time
	DurationMinutes int
	Kind            string
	Subject         string
	Notes           string
	Status          string
}

// End derives the end of the appointment from its start and duration.
func (a Appointment) End() time.Time {
	minutes := a.DurationMinutes
	if minutes < 1 {
		minutes = 1
	}
	return a.Start.Add(time.Duration(minutes) * time.Minute)
}

// Client is a read-only projection of a contact-plan entry owned by the
// remote service.
type Client struct {
	ID            int64
	Name          string
	ClientNumber  string
	Agency        string
	ContactReason string
	Email         string
	Phone         string
}

// PendingCreation is the transient state between a calendar slot selection
// and either confirmation or cancellation. At most one exists at a time.
type PendingCreation struct {
	Client        Client
	ProposedStart time.Time
	ProposedEnd   time.Time
	Subject       string
	Notes         string
}

// EditDraft carries the mutable fields of an appointment as edited by the
// operator. Start is compared against the original at minute granularity.
type EditDraft struct {
	Subject         string
	Notes           string
	Status          string
	Start           time.Time
	DurationMinutes int
}

// PendingEdit is a working copy of an existing appointment's mutable fields,
// tracked against the original for diffing. Discarding it never mutates the
// original.
type PendingEdit struct {
	Original Appointment
	Draft    EditDraft
}

// CreateRequest is the full appointment payload submitted on creation.
type CreateRequest struct {
	ContactPlanID   int64
	OwnerUsername   string
	ClientNumber    string
	Start           time.Time
	DurationMinutes int
	Kind            string
	Subject         string
	Notes           string
	Status          string
}

// Patch is a partial update: only changed fields are set (nil pointers are
// omitted on the wire), while the identifying fields are always present so
// the remote service can disambiguate the update.
type Patch struct {
	Subject         *string
	Notes           *string
	Status          *string
	Start           *time.Time
	DurationMinutes *int

	OwnerUsername string
	ClientNumber  string
	ContactPlanID int64
	Kind          string
}

// Update carries the authoritative values returned by the remote service for
// the fields it accepted. Absent fields keep their prior values.
type Update struct {
	Subject         *string
	Notes           *string
	Status          *string
	Start           *time.Time
	DurationMinutes *int
}

// VisibleEvent is an appointment-like record produced for presentation. A
// provisional event represents the pending creation and is never part of the
// persisted set.
type VisibleEvent struct {
	ID           string
	Appointment  Appointment
	Provisional  bool
	ClientNumber string
}

// OverlapWarning flags two of the manager's own appointments whose time
// ranges intersect. Display-only; it never blocks a confirmation.
type OverlapWarning struct {
	AppointmentID int64
	WithID        int64
}
