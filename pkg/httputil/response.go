package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
	"github.com/AlexandruMarc/Easy-Shops/pkg/logger"
	"github.com/AlexandruMarc/Easy-Shops/pkg/validator"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a 200 envelope.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{Message: message, Data: data})
}

// WriteError maps err to a status through the central error table and writes
// the envelope. Client errors carry the AppError message. Server errors
// carry fallbackMsg and are logged, except upload failures which also expose
// the cause text in data.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("correlation_id", logger.CorrelationIDFromContext(r.Context())),
		)

		if errors.Is(err, apperrors.ErrUploadFailed) {
			WriteJSON(w, status, Response{Message: "Upload failed!", Data: uploadCause(err)})
			return
		}
		WriteJSON(w, status, Response{Message: fallbackMsg})
		return
	}

	message := http.StatusText(status)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else if errors.Is(err, apperrors.ErrForbidden) {
		message = apperrors.AccessDeniedMessage
	}

	WriteJSON(w, status, Response{Message: message})
}

// uploadCause returns the text of the innermost error that caused an upload
// failure, without the AppError prefixes.
func uploadCause(err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Err == nil {
		return err.Error()
	}
	causes, ok := appErr.Err.(interface{ Unwrap() []error })
	if !ok {
		return appErr.Err.Error()
	}
	for _, c := range causes.Unwrap() {
		if c == apperrors.ErrUploadFailed {
			continue
		}
		var inner *apperrors.AppError
		if errors.As(c, &inner) {
			return inner.Message
		}
		return c.Error()
	}
	return appErr.Err.Error()
}

// WriteValidationError writes a 400 envelope with field-level errors in data.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Message: "request validation failed",
			Data:    valErr.Fields(),
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{Message: err.Error()})
}

// ParseID parses a positive numeric path identifier. On failure it writes a
// 400 envelope and returns false, signaling the caller to return early.
func ParseID(w http.ResponseWriter, param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		WriteJSON(w, http.StatusBadRequest, Response{Message: "invalid id: " + param})
		return 0, false
	}
	return id, true
}
