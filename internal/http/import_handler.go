package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Djo9111/reporting-front/internal/application"
	"github.com/Djo9111/reporting-front/internal/remote"
)

type importService interface {
	Upload(ctx context.Context, params application.UploadParams) (remote.ImportSummary, error)
}

// ImportHandler forwards Excel extracts to the backend import endpoint.
type ImportHandler struct {
	service   importService
	responder responder
	logger    *slog.Logger
	// maxUploadBytes bounds the multipart form size.
	maxUploadBytes int64
}

func NewImportHandler(service importService, logger *slog.Logger) *ImportHandler {
	base := defaultLogger(logger)
	return &ImportHandler{
		service:        service,
		responder:      newResponder(base),
		logger:         base,
		maxUploadBytes: 16 << 20,
	}
}

type importSummaryDTO struct {
	Inserted int      `json:"inseres"`
	Updated  int      `json:"mis_a_jour"`
	Errors   []string `json:"erreurs"`
}

// Upload reads the multipart form and forwards the file. The administration
// key travels in the X-Admin-Key header.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "ImportHandler", "Upload")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		logger.ErrorContext(r.Context(), "failed to parse multipart form", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	file, header, err := r.FormFile("fichier")
	if err != nil {
		logger.ErrorContext(r.Context(), "missing upload file", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingFile)
		return
	}
	defer file.Close()

	summary, err := h.service.Upload(r.Context(), application.UploadParams{
		AdminKey: r.Header.Get("X-Admin-Key"),
		Filename: header.Filename,
		Reader:   file,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "extract upload failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	errorsList := summary.Errors
	if errorsList == nil {
		errorsList = []string{}
	}
	logger.With("inserted", summary.Inserted, "updated", summary.Updated).InfoContext(r.Context(), "extract forwarded")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, importSummaryDTO{
		Inserted: summary.Inserted,
		Updated:  summary.Updated,
		Errors:   errorsList,
	})
}
