package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Djo9111/reporting-front/internal/agenda"
)

// Client talks to the backend service that owns all business logic: parsing,
// persistence, authentication and KPI computation. It is the only component
// aware of the backend's wire vocabulary.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New constructs a client for the backend rooted at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "remote"),
	}
}

// LoginResult carries the authentication outcome: an opaque token when the
// backend issues one, and whatever profile fields came along.
type LoginResult struct {
	Token   string
	Profile Profile
}

type loginRequest struct {
	NomUtilisateur string `json:"nomUtilisateur"`
	MotDePasse     string `json:"motDePasse"`
}

type loginResponseDTO struct {
	Token string `json:"token"`
	profileDTO
}

// Login authenticates a manager against the backend.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var dto loginResponseDTO
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		NomUtilisateur: username,
		MotDePasse:     password,
	}, &dto)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	profile := dto.normalize()
	if profile.Username == "" {
		profile.Username = username
	}
	return LoginResult{Token: dto.Token, Profile: profile}, nil
}

// FetchUser retrieves the profile for a username.
func (c *Client) FetchUser(ctx context.Context, username string) (Profile, error) {
	var dto profileDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/user/"+url.PathEscape(username), nil, &dto); err != nil {
		return Profile{}, err
	}
	profile := dto.normalize()
	if profile.Username == "" {
		profile.Username = username
	}
	return profile, nil
}

// ListManagers retrieves every dashboard user known to the backend.
func (c *Client) ListManagers(ctx context.Context) ([]Profile, error) {
	var dtos []profileDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/users", nil, &dtos); err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(dtos))
	for _, dto := range dtos {
		profiles = append(profiles, dto.normalize())
	}
	return profiles, nil
}

// Indicator is one KPI row: realized production against its objective.
type Indicator struct {
	Name        string  `json:"indicateur"`
	Objective   float64 `json:"objectif"`
	Realization float64 `json:"realisation"`
}

// ListPerformance retrieves the manager's KPI rows.
func (c *Client) ListPerformance(ctx context.Context, username string) ([]Indicator, error) {
	var indicators []Indicator
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/performance/"+url.PathEscape(username), nil, &indicators); err != nil {
		return nil, err
	}
	return indicators, nil
}

type contactDTO struct {
	ID             int64  `json:"id"`
	Client         string `json:"client"`
	NumeroClient   string `json:"numeroClient"`
	Agence         string `json:"agence"`
	MotifDeContact string `json:"motifDeContact"`
	Email          string `json:"email"`
	Telephone      string `json:"telephone"`
}

// ListContacts retrieves the clients assigned to a manager by the current
// contact plan.
func (c *Client) ListContacts(ctx context.Context, username string) ([]agenda.Client, error) {
	var dtos []contactDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/import/my-contacts/"+url.PathEscape(username), nil, &dtos); err != nil {
		return nil, err
	}
	clients := make([]agenda.Client, 0, len(dtos))
	for _, dto := range dtos {
		clients = append(clients, agenda.Client{
			ID:            dto.ID,
			Name:          dto.Client,
			ClientNumber:  dto.NumeroClient,
			Agency:        dto.Agence,
			ContactReason: dto.MotifDeContact,
			Email:         dto.Email,
			Phone:         dto.Telephone,
		})
	}
	return clients, nil
}

type appointmentDTO struct {
	ID             int64  `json:"id"`
	ContactPlanID  int64  `json:"contactPlanId"`
	NomUtilisateur string `json:"nomUtilisateur"`
	NumeroClient   string `json:"numeroClient"`
	DateRdv        string `json:"dateRdv"`
	DureeMinutes   int    `json:"dureeMinutes"`
	TypeRdv        string `json:"typeRdv"`
	ObjetRdv       string `json:"objetRdv"`
	StatutRdv      string `json:"statutRdv"`
	Commentaires   string `json:"commentaires"`
}

func (d appointmentDTO) toAppointment() agenda.Appointment {
	duration := d.DureeMinutes
	if duration < 1 {
		duration = agenda.DefaultDurationMinutes
	}
	return agenda.Appointment{
		ID:              d.ID,
		ContactPlanID:   d.ContactPlanID,
		OwnerUsername:   d.NomUtilisateur,
		ClientNumber:    d.NumeroClient,
		Start:           parseWireTime(d.DateRdv),
		DurationMinutes: duration,
		Kind:            d.TypeRdv,
		Subject:         d.ObjetRdv,
		Notes:           d.Commentaires,
		Status:          d.StatutRdv,
	}
}

// ListAppointments retrieves all appointments owned by a manager.
func (c *Client) ListAppointments(ctx context.Context, owner string) ([]agenda.Appointment, error) {
	var dtos []appointmentDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/appointments/manager/"+url.PathEscape(owner), nil, &dtos); err != nil {
		return nil, err
	}
	appointments := make([]agenda.Appointment, 0, len(dtos))
	for _, dto := range dtos {
		appointments = append(appointments, dto.toAppointment())
	}
	return appointments, nil
}

type createAppointmentDTO struct {
	ContactPlanID  int64  `json:"contactPlanId"`
	NomUtilisateur string `json:"nomUtilisateur"`
	NumeroClient   string `json:"numeroClient"`
	DateRdv        string `json:"dateRdv"`
	DureeMinutes   int    `json:"dureeMinutes"`
	TypeRdv        string `json:"typeRdv"`
	ObjetRdv       string `json:"objetRdv"`
	StatutRdv      string `json:"statutRdv"`
	Commentaires   string `json:"commentaires"`
}

// CreateAppointment submits a full appointment record and returns the
// backend's authoritative copy.
func (c *Client) CreateAppointment(ctx context.Context, req agenda.CreateRequest) (agenda.Appointment, error) {
	payload := createAppointmentDTO{
		ContactPlanID:  req.ContactPlanID,
		NomUtilisateur: req.OwnerUsername,
		NumeroClient:   req.ClientNumber,
		DateRdv:        req.Start.UTC().Format(time.RFC3339),
		DureeMinutes:   req.DurationMinutes,
		TypeRdv:        req.Kind,
		ObjetRdv:       req.Subject,
		StatutRdv:      req.Status,
		Commentaires:   req.Notes,
	}

	var dto appointmentDTO
	if err := c.doJSON(ctx, http.MethodPost, "/api/appointments", payload, &dto); err != nil {
		return agenda.Appointment{}, err
	}
	return dto.toAppointment(), nil
}

type appointmentPatchDTO struct {
	ObjetRdv     *string `json:"objetRdv,omitempty"`
	Commentaires *string `json:"commentaires,omitempty"`
	StatutRdv    *string `json:"statutRdv,omitempty"`
	DateRdv      *string `json:"dateRdv,omitempty"`
	DureeMinutes *int    `json:"dureeMinutes,omitempty"`

	NomUtilisateur string `json:"nomUtilisateur"`
	NumeroClient   string `json:"numeroClient"`
	ContactPlanID  int64  `json:"contactPlanId,omitempty"`
	TypeRdv        string `json:"typeRdv,omitempty"`
}

type appointmentUpdateDTO struct {
	ObjetRdv     *string `json:"objetRdv"`
	Commentaires *string `json:"commentaires"`
	StatutRdv    *string `json:"statutRdv"`
	DateRdv      *string `json:"dateRdv"`
	DureeMinutes *int    `json:"dureeMinutes"`
}

// UpdateAppointment submits a partial update. The patch serializes only the
// changed fields plus the identifying fields; the backend's response is
// authoritative for whatever fields it includes.
func (c *Client) UpdateAppointment(ctx context.Context, id int64, patch agenda.Patch) (agenda.Update, error) {
	payload := appointmentPatchDTO{
		ObjetRdv:       patch.Subject,
		Commentaires:   patch.Notes,
		StatutRdv:      patch.Status,
		DureeMinutes:   patch.DurationMinutes,
		NomUtilisateur: patch.OwnerUsername,
		NumeroClient:   patch.ClientNumber,
		ContactPlanID:  patch.ContactPlanID,
		TypeRdv:        patch.Kind,
	}
	if patch.Start != nil {
		formatted := patch.Start.UTC().Format(time.RFC3339)
		payload.DateRdv = &formatted
	}

	var dto appointmentUpdateDTO
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/appointments/%d", id), payload, &dto); err != nil {
		return agenda.Update{}, err
	}

	update := agenda.Update{
		Subject:         dto.ObjetRdv,
		Notes:           dto.Commentaires,
		Status:          dto.StatutRdv,
		DurationMinutes: dto.DureeMinutes,
	}
	if dto.DateRdv != nil {
		if ts := parseWireTime(*dto.DateRdv); !ts.IsZero() {
			update.Start = &ts
		}
	}
	return update, nil
}

// ImportSummary reports the outcome of an Excel extract upload.
type ImportSummary struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
}

// UploadExtract forwards an Excel extract to the backend as multipart form
// data. Parsing happens entirely upstream.
func (c *Client) UploadExtract(ctx context.Context, filename string, reader io.Reader) (ImportSummary, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := io.Copy(part, reader); err != nil {
		return ImportSummary{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := writer.Close(); err != nil {
		return ImportSummary{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload/excel", &body)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var summary ImportSummary
	if err := c.send(req, &summary); err != nil {
		return ImportSummary{}, err
	}
	return summary, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(req.Context(), "backend request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Code: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
		c.logger.ErrorContext(req.Context(), "backend rejected request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func decodeErrorMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
