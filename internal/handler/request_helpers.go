package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/logger"
)

// MaxIdempotencyKeyLength bounds the Idempotency-Key header; keys are stored
// per player until maintenance purges them.
const MaxIdempotencyKeyLength = 128

// decodeRequest reads and validates a JSON body into T. When ok is false the
// 400 response has already been written.
func decodeRequest[T any](w http.ResponseWriter, r *http.Request, action string) (req T, ok bool) {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn(fmt.Sprintf(LogMsgDecodeFailed, action), "error", err)
		respondError(w, http.StatusBadRequest, domain.CodeInvalidInput, ErrMsgInvalidRequest)
		return req, false
	}

	if err := GetValidator().ValidateStruct(&req); err != nil {
		log.Debug(fmt.Sprintf(LogMsgValidationFailed, action), "error", err)
		respondValidation(w, FormatValidationError(err))
		return req, false
	}

	log.Debug(fmt.Sprintf(LogMsgRequestDecoded, action))
	return req, true
}

// requireQuery returns the values of the named query parameters in order.
// Every missing parameter is reported in one validation response.
func requireQuery(w http.ResponseWriter, r *http.Request, names ...string) ([]string, bool) {
	query := r.URL.Query()
	values := make([]string, len(names))
	var missing map[string]string
	for i, name := range names {
		values[i] = query.Get(name)
		if values[i] != "" {
			continue
		}
		if missing == nil {
			missing = make(map[string]string)
		}
		missing[name] = fmt.Sprintf(ErrMsgMissingQueryParam, name)
	}
	if missing != nil {
		logger.FromContext(r.Context()).Warn(LogMsgMissingParam, "params", missing)
		respondValidation(w, missing)
		return nil, false
	}
	return values, true
}

// idempotencyKey returns the optional deduplication header. An oversized key
// is rejected with 400.
func idempotencyKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.Header.Get(HeaderIdempotencyKey)
	if len(key) > MaxIdempotencyKeyLength {
		respondValidation(w, map[string]string{
			HeaderIdempotencyKey: fmt.Sprintf("Must be at most %d characters", MaxIdempotencyKeyLength),
		})
		return "", false
	}
	return key, true
}

func respondValidation(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:  ErrMsgInvalidRequestSummary,
		Code:   domain.CodeInvalidInput,
		Kind:   string(domain.KindValidation),
		Fields: fields,
	})
}
