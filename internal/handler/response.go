package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmeetit/cmeetit/internal/lifecycle"
	"github.com/cmeetit/cmeetit/internal/portfolio"
	"github.com/cmeetit/cmeetit/internal/repository"
	"github.com/cmeetit/cmeetit/internal/service"
	"github.com/cmeetit/cmeetit/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to status codes. Anything unknown is
// logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, err error, attrs ...any) {
	var fieldErrs validation.FieldErrors
	var denied *portfolio.DeniedError

	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid goal", Fields: fieldErrs})
		return

	case errors.Is(err, repository.ErrGoalNotFound),
		errors.Is(err, repository.ErrSettlementNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return

	case errors.As(err, &denied):
		writeJSON(w, http.StatusConflict, errorResponse{Error: denied.Err.Error(), Reason: denied.Reason})
		return

	case errors.Is(err, lifecycle.ErrGoalNotActive),
		errors.Is(err, lifecycle.ErrFailureNotAllowed),
		errors.Is(err, lifecycle.ErrNotSettleable):
		writeError(w, http.StatusConflict, err.Error())
		return

	case errors.Is(err, lifecycle.ErrOutsideGoalRange),
		errors.Is(err, lifecycle.ErrCheckInDateNotAllowed),
		errors.Is(err, service.ErrUnknownPayment):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return

	case errors.Is(err, service.ErrPaymentDeclined):
		writeError(w, http.StatusPaymentRequired, err.Error())
		return

	case errors.Is(err, service.ErrNoPaymentHandle):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	slog.Error("request failed", append([]any{"error", err}, attrs...)...)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// flexString accepts a JSON string or number and keeps its text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}
