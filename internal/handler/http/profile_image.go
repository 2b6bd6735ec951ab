package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AlexandruMarc/Easy-Shops/internal/service"
	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
	"github.com/AlexandruMarc/Easy-Shops/pkg/httputil"
	"github.com/AlexandruMarc/Easy-Shops/pkg/middleware"
)

// ProfileImageHandler handles HTTP requests for user profile images.
type ProfileImageHandler struct {
	service *service.ProfileImageService
	authz   bool
	logger  *slog.Logger
}

// NewProfileImageHandler creates a new profile image HTTP handler. With authz
// set, uploads are limited to the user themselves and admins.
func NewProfileImageHandler(svc *service.ProfileImageService, authz bool, logger *slog.Logger) *ProfileImageHandler {
	return &ProfileImageHandler{service: svc, authz: authz, logger: logger}
}

// Upload handles POST /images/user/upload (multipart: file, userId).
func (h *ProfileImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, 1); err != nil {
		httputil.WriteError(w, r, apperrors.UploadFailed(err), msgUploadFailed, h.logger)
		return
	}

	raw := r.FormValue("userId")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		httputil.WriteError(w, r, apperrors.UploadFailed(apperrors.InvalidInput("invalid userId: "+strconv.Quote(raw))), msgUploadFailed, h.logger)
		return
	}
	if !middleware.ActsFor(r, h.authz, strconv.FormatInt(userID, 10), middleware.RoleAdmin) {
		httputil.WriteError(w, r, apperrors.AccessDenied(), "", h.logger)
		return
	}

	files, err := openFile(r, "file")
	if err != nil {
		httputil.WriteError(w, r, apperrors.UploadFailed(err), msgUploadFailed, h.logger)
		return
	}
	defer files.Close()

	dto, err := h.service.Upload(r.Context(), userID, files.uploads[0])
	if err != nil {
		httputil.WriteError(w, r, err, msgUploadFailed, h.logger)
		return
	}
	httputil.WriteSuccess(w, msgUploadSuccess, dto)
}

// Get handles GET /images/user/{userId}.
func (h *ProfileImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}

	dto, err := h.service.Get(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, "Get image failed!", h.logger)
		return
	}
	httputil.WriteSuccess(w, msgSuccess, dto)
}

// Download handles GET /images/user/{userId}/download.
func (h *ProfileImageHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}

	content, err := h.service.Open(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, msgDownloadError, h.logger)
		return
	}
	streamContent(w, r, content, h.logger)
}

// Delete handles DELETE /images/user/{userId}/delete.
func (h *ProfileImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, msgDeleteFailed, h.logger)
		return
	}
	httputil.WriteSuccess(w, msgDeleteSuccess, nil)
}
