// Package calendar projects agenda state into the shapes the dashboard UI
// renders: colored events and a Monday-first week grid. It holds no state of
// its own.
package calendar

import (
	"time"

	"github.com/Djo9111/reporting-front/internal/agenda"
)

// Fill colors by appointment status. Unknown statuses and provisional events
// use the planned color.
const (
	ColorPlanned   = "#f97316"
	ColorCompleted = "#16a34a"
	ColorCancelled = "#ef4444"
)

// Event is a renderable calendar entry.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Color       string    `json:"color"`
	Status      string    `json:"status"`
	Provisional bool      `json:"provisional"`
}

// StatusColor maps an appointment status to its display color.
func StatusColor(status string) string {
	switch status {
	case agenda.StatusCompleted:
		return ColorCompleted
	case agenda.StatusCancelled:
		return ColorCancelled
	default:
		return ColorPlanned
	}
}

// Project converts visible agenda events into renderable calendar events,
// preserving order.
func Project(visible []agenda.VisibleEvent) []Event {
	events := make([]Event, 0, len(visible))
	for _, v := range visible {
		events = append(events, projectOne(v))
	}
	return events
}

func projectOne(v agenda.VisibleEvent) Event {
	event := Event{
		ID:          v.ID,
		Start:       v.Appointment.Start,
		End:         v.Appointment.End(),
		Status:      v.Appointment.Status,
		Provisional: v.Provisional,
	}
	if v.Provisional {
		event.Title = "[Provisoire] " + v.ClientNumber
		event.Color = ColorPlanned
		return event
	}
	subject := v.Appointment.Subject
	if subject == "" {
		subject = "RDV"
	}
	event.Title = v.Appointment.ClientNumber + " - " + subject
	event.Color = StatusColor(v.Appointment.Status)
	return event
}

// Day is one column of the week grid.
type Day struct {
	Date   time.Time `json:"date"`
	Events []Event   `json:"events"`
}

// WeekStart returns the Monday at midnight of the week containing reference,
// in the reference's location.
func WeekStart(reference time.Time) time.Time {
	midnight := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, reference.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

// Week buckets events into the seven days starting at the Monday of the week
// containing reference. Events are assigned by their start time; events
// outside the week are dropped.
func Week(reference time.Time, events []Event) []Day {
	start := WeekStart(reference)
	days := make([]Day, 7)
	for i := range days {
		days[i] = Day{Date: start.AddDate(0, 0, i), Events: []Event{}}
	}
	end := start.AddDate(0, 0, 7)
	for _, event := range events {
		if event.Start.Before(start) || !event.Start.Before(end) {
			continue
		}
		index := int(event.Start.Sub(start).Hours() / 24)
		if index < 0 || index > 6 {
			continue
		}
		days[index].Events = append(days[index].Events, event)
	}
	return days
}
