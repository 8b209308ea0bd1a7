package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"wallet/internal/core"
	"wallet/internal/log"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsValidation(err):
		status = http.StatusBadRequest
	case core.IsNotFound(err):
		status = http.StatusNotFound
	case core.IsDuplicate(err):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldPath, r.URL.Path, log.FieldError, err.Error())
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON reads a request body strictly: unknown fields and trailing
// data are rejected.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return core.NewValidationError("body", "must be a valid JSON object")
	}
	if dec.More() {
		return core.NewValidationError("body", "must contain a single JSON object")
	}
	return nil
}

// session resolves the persisted current user, writing 401 when nobody
// is logged in. The bool reports whether the caller may proceed.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (core.Session, bool) {
	sess, err := s.auth.Current(r.Context())
	if err != nil {
		writeError(w, r, err)
		return core.Session{}, false
	}
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not logged in"})
		return core.Session{}, false
	}
	return *sess, true
}
