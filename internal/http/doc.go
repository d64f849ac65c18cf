// Package http provides the HTTP handlers and middleware of the dashboard
// gateway API.
//
// Every route lives under /api and, except for login, sits behind the session
// guard. The token travels in the Authorization header (Bearer) or in the
// session_token cookie.
//   - POST /api/sessions: authenticates against the backend and issues a
//     gateway session. Body: {"nom_utilisateur","mot_de_passe"}. The token is
//     returned in the body, the X-Session-Token header and the session cookie.
//   - GET /api/sessions/current, DELETE /api/sessions/current: current
//     identity and logout.
//   - GET /api/contacts: the manager's client list, filterable with ?q=. An
//     explicit ?manager= overrides the session identity, here and on every
//     manager scoped route below.
//   - GET /api/managers: the manager directory. Requires the X-Admin-Key
//     header.
//   - GET /api/performance: the manager's KPI report.
//   - POST /api/imports/excel: forwards an Excel extract (multipart field
//     "fichier") to the backend. Requires the X-Admin-Key header.
//   - GET /api/agenda: the visible agenda with week projection and overlap
//     warnings. ?reload=true forces a backend refresh, ?semaine=YYYY-MM-DD
//     selects the projected week.
//   - POST /api/agenda/pending, POST /api/agenda/pending/confirmation,
//     DELETE /api/agenda/pending: stage, confirm or discard an appointment
//     creation.
//   - POST /api/agenda/edit, PUT /api/agenda/edit,
//     POST /api/agenda/edit/confirmation, DELETE /api/agenda/edit: open an
//     appointment for edit, amend the working copy, confirm or discard it.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
