package agenda

import "time"

// buildPatch computes the minimal partial update between the original
// appointment's last-known values and the edit draft.
//
// Subject, notes and status are included only when changed. Start and
// duration travel as a pair: changing one without the other would silently
// desynchronize the end time upstream, so both are sent whenever either
// differs. Start is compared at minute granularity because the edit surface
// only offers minute precision. The identifying fields are always present.
func buildPatch(original Appointment, draft EditDraft) Patch {
	patch := Patch{
		OwnerUsername: original.OwnerUsername,
		ClientNumber:  original.ClientNumber,
		ContactPlanID: original.ContactPlanID,
		Kind:          original.Kind,
	}

	if draft.Subject != original.Subject {
		subject := draft.Subject
		patch.Subject = &subject
	}
	if draft.Notes != original.Notes {
		notes := draft.Notes
		patch.Notes = &notes
	}
	if draft.Status != original.Status {
		status := draft.Status
		patch.Status = &status
	}

	startChanged := !sameMinute(draft.Start, original.Start)
	durationChanged := draft.DurationMinutes != original.DurationMinutes
	if startChanged || durationChanged {
		start := draft.Start
		duration := draft.DurationMinutes
		if duration < 1 {
			duration = DefaultDurationMinutes
		}
		patch.Start = &start
		patch.DurationMinutes = &duration
	}

	return patch
}

// sameMinute reports whether both instants fall on the same minute,
// ignoring sub-minute representation artifacts.
func sameMinute(a, b time.Time) bool {
	return a.Truncate(time.Minute).Equal(b.Truncate(time.Minute))
}

// applyUpdate overlays the authoritative response on top of the prior
// appointment: response fields win when present, otherwise prior values are
// retained.
func applyUpdate(prior Appointment, patch Patch, update Update) Appointment {
	merged := prior

	if patch.Start != nil {
		merged.Start = *patch.Start
	}
	if update.Start != nil {
		merged.Start = *update.Start
	}

	if patch.DurationMinutes != nil {
		merged.DurationMinutes = *patch.DurationMinutes
	}
	if update.DurationMinutes != nil {
		merged.DurationMinutes = *update.DurationMinutes
	}
	if merged.DurationMinutes < 1 {
		merged.DurationMinutes = DefaultDurationMinutes
	}

	switch {
	case update.Subject != nil:
		merged.Subject = *update.Subject
	case patch.Subject != nil:
		merged.Subject = *patch.Subject
	}
	switch {
	case update.Notes != nil:
		merged.Notes = *update.Notes
	case patch.Notes != nil:
		merged.Notes = *patch.Notes
	}
	switch {
	case update.Status != nil:
		merged.Status = *update.Status
	case patch.Status != nil:
		merged.Status = *patch.Status
	}

	return merged
}
