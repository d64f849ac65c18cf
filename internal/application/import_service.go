package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Djo9111/reporting-front/internal/remote"
)

// RemoteImporter exposes the backend extract upload required by the import
// service.
type RemoteImporter interface {
	UploadExtract(ctx context.Context, filename string, reader io.Reader) (remote.ImportSummary, error)
}

// UploadParams captures the data required to forward an Excel extract.
type UploadParams struct {
	AdminKey string
	Filename string
	Reader   io.Reader
}

// ImportService gates and forwards Excel extract uploads to the backend.
type ImportService struct {
	remote       RemoteImporter
	adminKeyHash string
	verifyKey    func(hashedKey, key string) error
	invalidate   func()
	logger       *slog.Logger
}

// NewImportService constructs an ImportService. invalidate, when non-nil, is
// called after each successful upload so stale contact caches are dropped.
func NewImportService(remoteClient RemoteImporter, adminKeyHash string, verifyKey func(hashedKey, key string) error, invalidate func(), logger *slog.Logger) *ImportService {
	if verifyKey == nil {
		verifyKey = VerifyAdminKey
	}
	return &ImportService{
		remote:       remoteClient,
		adminKeyHash: strings.TrimSpace(adminKeyHash),
		verifyKey:    verifyKey,
		invalidate:   invalidate,
		logger:       defaultLogger(logger),
	}
}

func (s *ImportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ImportService", operation, attrs...)
}

// Upload verifies the administration key and forwards the extract to the
// backend import endpoint.
func (s *ImportService) Upload(ctx context.Context, params UploadParams) (summary remote.ImportSummary, err error) {
	if s == nil {
		err = fmt.Errorf("ImportService is nil")
		return
	}
	if s.remote == nil {
		err = fmt.Errorf("remote client not configured")
		return
	}

	filename := strings.TrimSpace(params.Filename)
	logger := s.loggerWith(ctx, "Upload", "filename", filename)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "extract upload failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"inserted", summary.Inserted,
			"updated", summary.Updated,
			"row_errors", len(summary.Errors),
		).InfoContext(ctx, "extract uploaded")
	}()

	if s.adminKeyHash == "" {
		err = ErrForbidden
		return
	}
	if err = s.verifyKey(s.adminKeyHash, params.AdminKey); err != nil {
		err = ErrForbidden
		return
	}

	validation := &ValidationError{}
	if filename == "" {
		validation.add("fichier", "filename is required")
	}
	if params.Reader == nil {
		validation.add("fichier", "file content is required")
	}
	if validation.HasErrors() {
		err = validation
		return
	}

	summary, err = s.remote.UploadExtract(ctx, filename, params.Reader)
	if err != nil {
		return
	}
	if s.invalidate != nil {
		s.invalidate()
	}
	return
}
