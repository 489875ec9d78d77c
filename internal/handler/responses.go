package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/logger"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response. Code and Kind are stable;
// Error is for display. Cooldown fields are set only for reward gate errors.
type ErrorResponse struct {
	Error                string `json:"error"`
	Code                 string `json:"code,omitempty"`
	Kind                 string `json:"kind,omitempty"`
	RewardType           string `json:"reward_type,omitempty"`
	TimeUntilNextSeconds int64  `json:"time_until_next_seconds,omitempty"`
	DailyCount           int    `json:"daily_count,omitempty"`
	MaxDaily             int    `json:"max_daily,omitempty"`
}

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Kind   string            `json:"kind"`
	Fields map[string]string `json:"fields"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
		http.Error(w, ErrMsgGenericServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
		Kind:  string(domain.KindValidation),
	})
}

// respondServiceError logs a failed service call and writes the mapped response
func respondServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	log := logger.FromContext(r.Context())
	status, body := mapServiceError(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf(LogMsgServiceFailed, action), "error", err, "code", body.Code)
	} else {
		log.Warn(fmt.Sprintf(LogMsgServiceFailed, action), "error", err, "code", body.Code)
	}

	if body.TimeUntilNextSeconds > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(body.TimeUntilNextSeconds, 10))
	}
	respondJSON(w, status, body)
}

// mapServiceError converts a service error to its HTTP status and body
func mapServiceError(err error) (int, ErrorResponse) {
	kind := domain.KindOf(err)
	code := domain.CodeOf(err)

	body := ErrorResponse{
		Error: ErrMsgGenericServerError,
		Code:  code,
		Kind:  string(kind),
	}
	if msg, ok := userMessages[code]; ok {
		body.Error = msg
	}

	var onCooldown cooldown.ErrOnCooldown
	var quota cooldown.ErrQuotaExceeded
	switch {
	case errors.As(err, &quota):
		body.RewardType = quota.RewardType
		body.TimeUntilNextSeconds = int64(quota.TimeUntilNext.Seconds())
		body.DailyCount = quota.DailyCount
		body.MaxDaily = quota.MaxDaily
	case errors.As(err, &onCooldown):
		body.RewardType = onCooldown.RewardType
		body.TimeUntilNextSeconds = int64(onCooldown.Remaining.Seconds())
	}

	return statusFor(kind, code), body
}

func statusFor(kind domain.ErrorKind, code string) int {
	switch kind {
	case domain.KindValidation:
		switch code {
		case domain.CodeOnCooldown:
			return http.StatusTooManyRequests
		case domain.CodeDuplicateRequest:
			return http.StatusConflict
		case domain.CodeUserNotFound, domain.CodePlantTypeNotFound:
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case domain.KindCostMismatch, domain.KindConcurrencyConflict:
		return http.StatusConflict
	case domain.KindQuotaExceeded:
		return http.StatusTooManyRequests
	case domain.KindAuthorityUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
