package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
)

// envelope is the {message, data} body every Easy-Shops service answers with.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ParseResponseError reads a non-2xx response and translates it into an
// AppError whose kind follows the status. The body is consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	message := string(body)
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		message = env.Message
	}
	return mapStatus(resp.StatusCode, message, serviceName)
}

func mapStatus(status int, message, serviceName string) error {
	qualified := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: message, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return &apperrors.AppError{Code: "CONFLICT", Message: qualified, Status: status, Err: apperrors.ErrConflict}
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.AccessDenied()
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualified)
	case status >= 500:
		return fmt.Errorf("%s server error (%d): %s", serviceName, status, message)
	default:
		return &apperrors.AppError{Code: "DOWNSTREAM_ERROR", Message: qualified, Status: status}
	}
}
