package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"vault/internal/domain"
	"vault/internal/httputil"
)

// handleError converts domain errors to RFC 7807 responses carrying a "code" member.
// Internal errors are logged and reported without detail.
func handleError(w http.ResponseWriter, err error) {
	status := domain.StatusCode(err)
	extras := map[string]interface{}{"code": domain.Code(err)}
	detail := err.Error()

	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError
	switch {
	case errors.As(err, &validationErr):
		detail = validationErr.Message
		if len(validationErr.Fields) > 0 {
			extras["errors"] = validationErr.Fields
		}
	case errors.As(err, &conflictErr):
		if conflictErr.Field != "" {
			extras["field"] = conflictErr.Field
		}
	case status == http.StatusInternalServerError:
		slog.Error("unhandled error", "error", err)
		detail = "internal server error"
	}

	httputil.RespondErrorWithExtras(w, status, detail, extras)
}

// handleParseError reports a body that could not be decoded
func handleParseError(w http.ResponseWriter, err error) {
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		httputil.RespondErrorWithExtras(w, http.StatusRequestEntityTooLarge, err.Error(), map[string]interface{}{"code": domain.CodeBadRequest})
		return
	}
	httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "Invalid request body", map[string]interface{}{"code": domain.CodeBadRequest})
}

// PathParam returns a required path value, writing a 400 when it is empty
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, label+" is required", map[string]interface{}{"code": domain.CodeBadRequest})
		return "", false
	}
	return value, true
}

// messageResponse is the body of endpoints with nothing else to return
type messageResponse struct {
	Message string `json:"message"`
}
