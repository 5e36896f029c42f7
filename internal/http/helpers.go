package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/internal/admin"
	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Draft   *admin.Draft `json:"draft,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	if auth.IsAuthError(err) {
		auth.WriteError(w, err)
		return
	}
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	payload := errorResponse{Message: err.Error()}
	var saveErr *admin.SaveError
	if errors.As(err, &saveErr) {
		draft := saveErr.Draft.Clone()
		payload.Draft = &draft
	}

	switch {
	case content.IsNotFound(err), errors.Is(err, posts.ErrCategoryNotFound):
		payload.Error = "not_found"
		return http.StatusNotFound, payload
	case content.IsConflict(err):
		payload.Error = "conflict"
		return http.StatusConflict, payload
	case errors.Is(err, posts.ErrValidation),
		errors.Is(err, posts.ErrInvalidSlug),
		errors.Is(err, content.ErrEmptySlug),
		errors.Is(err, frontmatter.ErrInvalidKey):
		payload.Error = "validation_failed"
		return http.StatusBadRequest, payload
	}

	payload.Error = "internal_error"
	return http.StatusInternalServerError, payload
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

func parseBoolQuery(value string) *bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseIntQuery(value string, defaultValue int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}
