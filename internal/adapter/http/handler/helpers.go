package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iho/stockledger/internal/adapter/http/dto"
	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status mapDomainError picks. Missing
// account settings are listed one message per entry.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	resp := dto.ErrorResponse{Error: message, Message: err.Error()}

	var missing *domain.MissingAccountsError
	if errors.As(err, &missing) {
		resp.Details = missing.Messages
	}

	writeJSON(w, mapDomainError(err), resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var missing *domain.MissingAccountsError

	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrStockTransferNotFound),
		errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound
	case errors.As(err, &missing),
		errors.Is(err, domain.ErrAccountsNotConfigured),
		errors.Is(err, domain.ErrRoundOffAccountNotSet),
		errors.Is(err, domain.ErrTotalNotComputable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrTransferNotEditable),
		errors.Is(err, domain.ErrInvoiceVersionStale),
		errors.Is(err, domain.ErrInvoiceLocked):
		return http.StatusConflict
	case errors.Is(err, dto.ErrValidationFailed),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrQuantityTooLarge),
		errors.Is(err, domain.ErrTooManyLines),
		errors.Is(err, domain.ErrInvalidInvoiceKind),
		errors.Is(err, domain.ErrInvoiceEmpty),
		errors.Is(err, domain.ErrInvalidSetting),
		errors.Is(err, domain.ErrInvalidAccountName):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrInconsistentLedger):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeRequest decodes a JSON body into dst and validates it.
func decodeRequest(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", dto.ErrValidationFailed, err)
	}
	return dto.Validate(dst)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
