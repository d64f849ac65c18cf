package application

import "time"

// Manager represents a portfolio manager exposed by the directory service.
type Manager struct {
	Username    string
	DisplayName string
	AgencyCode  string
	Email       string
	Phone       string
	Portfolio   string
	Role        string
}

// SessionInfo is the authenticated identity attached to a request.
type SessionInfo struct {
	Token       string
	Username    string
	DisplayName string
	RemoteToken string
	ExpiresAt   time.Time
}

// LoginParams captures the data required to authenticate a manager.
type LoginParams struct {
	Username string
	Password string
}

// LoginResult captures the outcome of a successful authentication attempt.
type LoginResult struct {
	Session SessionInfo
}

// Attainment levels for a performance indicator, derived from its completion
// rate.
const (
	AttainmentReached = "atteint"
	AttainmentOnTrack = "en_cours"
	AttainmentBehind  = "en_retard"
)

// PerformanceIndicator is one KPI row enriched with its completion rate and
// attainment level.
type PerformanceIndicator struct {
	Name        string
	Objective   float64
	Realization float64
	Rate        int
	Level       string
}

// PerformanceReport aggregates a manager's KPI rows.
type PerformanceReport struct {
	Manager          string
	Indicators       []PerformanceIndicator
	TotalObjective   float64
	TotalRealization float64
	OverallRate      int
}

// ClientListParams captures the filters applied to a contact listing.
type ClientListParams struct {
	Manager string
	Query   string
}
