package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/logger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps err onto a status code. Internal errors are logged and
// returned without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, apperr.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", `Bearer realm="event-crm"`)
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	default:
		logger.Log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &apperr.ValidationError{Message: "request body is empty"}
		}
		return &apperr.ValidationError{Message: "invalid JSON body: " + err.Error()}
	}
	if dec.More() {
		return &apperr.ValidationError{Message: "request body must contain a single JSON object"}
	}
	return nil
}

func pathUUID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apperr.Invalid("id", "must be a UUID")
	}
	return id, nil
}

func pathInt64(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

// parseTime accepts a calendar date or an RFC 3339 timestamp. Bare dates
// are anchored to midnight in loc.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q is not a date (YYYY-MM-DD) or RFC 3339 timestamp", s)
}

// Time is a JSON time that also accepts bare dates.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler. Bare dates are read as UTC
// midnight.
func (t *Time) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	parsed, err := parseTime(s, time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ptr returns a pointer to t's time, or nil for a nil t.
func (t *Time) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
