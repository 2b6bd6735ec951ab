package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/internal/service"
	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
	"github.com/AlexandruMarc/Easy-Shops/pkg/httputil"
	"github.com/AlexandruMarc/Easy-Shops/pkg/logger"
)

// Response messages of the image endpoints.
const (
	msgUploadSuccess = "Upload Success!"
	msgUploadFailed  = "Upload failed!"
	msgUpdateSuccess = "Update success!"
	msgUpdateFailed  = "Update Failed!"
	msgDeleteSuccess = "Delete success!"
	msgDeleteFailed  = "Delete Failed!"
	msgSuccess       = "success"
	msgDownloadError = "Download failed!"
)

// ImageHandler handles HTTP requests for product image endpoints.
type ImageHandler struct {
	service  *service.ImageService
	maxFiles int
	logger   *slog.Logger
}

// NewImageHandler creates a new image HTTP handler.
func NewImageHandler(svc *service.ImageService, maxFiles int, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{service: svc, maxFiles: maxFiles, logger: logger}
}

// Upload handles POST /images/upload (multipart: files, productId).
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxFiles); err != nil {
		httputil.WriteError(w, r, apperrors.UploadFailed(err), msgUploadFailed, h.logger)
		return
	}

	raw := r.FormValue("productId")
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID <= 0 {
		httputil.WriteError(w, r, apperrors.UploadFailed(apperrors.InvalidInput("invalid productId: "+strconv.Quote(raw))), msgUploadFailed, h.logger)
		return
	}

	files, err := openFiles(r, "files")
	if err != nil {
		httputil.WriteError(w, r, apperrors.UploadFailed(err), msgUploadFailed, h.logger)
		return
	}
	defer files.Close()

	dtos, err := h.service.Upload(r.Context(), productID, files.uploads)
	if err != nil {
		httputil.WriteError(w, r, err, msgUploadFailed, h.logger)
		return
	}
	httputil.WriteSuccess(w, msgUploadSuccess, dtos)
}

// Download handles GET /images/image/download/{imageId}.
func (h *ImageHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "imageId"))
	if !ok {
		return
	}

	content, err := h.service.Open(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, msgDownloadError, h.logger)
		return
	}
	streamContent(w, r, content, h.logger)
}

// ListByProduct handles GET /images/product/{productId}.
func (h *ImageHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	dtos, err := h.service.ListByProduct(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, "Get images failed!", h.logger)
		return
	}
	httputil.WriteSuccess(w, msgSuccess, dtos)
}

// Update handles PUT /images/image/{imageId}/update (multipart: file).
func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "imageId"))
	if !ok {
		return
	}

	if err := parseMultipart(w, r, 1); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), msgUpdateFailed, h.logger)
		return
	}
	files, err := openFile(r, "file")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), msgUpdateFailed, h.logger)
		return
	}
	defer files.Close()

	dto, err := h.service.Update(r.Context(), id, files.uploads[0])
	if err != nil {
		httputil.WriteError(w, r, err, msgUpdateFailed, h.logger)
		return
	}
	httputil.WriteSuccess(w, msgUpdateSuccess, dto)
}

// Delete handles DELETE /images/image/{imageId}/delete.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "imageId"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, msgDeleteFailed, h.logger)
		return
	}
	httputil.WriteSuccess(w, msgDeleteSuccess, nil)
}

// streamContent writes an open payload as an attachment and closes it.
// Headers are sent before the first byte, so a failure mid-stream can only
// be logged.
func streamContent(w http.ResponseWriter, r *http.Request, content *domain.Content, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	defer func() {
		if err := content.Close(); err != nil {
			l.WarnContext(r.Context(), "failed to close image content", slog.String("error", err.Error()))
		}
	}()

	etag := contentETag(content)
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", content.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(content.Size, 10))
	w.Header().Set("Content-Disposition", contentDisposition(content.FileName))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, content); err != nil {
		l.ErrorContext(r.Context(), "image stream interrupted",
			slog.String("file_name", content.FileName),
			slog.String("error", err.Error()),
		)
	}
}

// contentETag changes whenever the payload behind a download URL is replaced.
func contentETag(content *domain.Content) string {
	return fmt.Sprintf(`"%d-%d"`, content.OID, content.Size)
}

func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
