package controller

import (
	"errors"
	"net/http"

	"github.com/api-sage/banking-ledger/internal/domain"
)

// statusForError maps the domain error taxonomy onto HTTP statuses. Anything
// unrecognized is an internal error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrAccountInactive),
		errors.Is(err, domain.ErrInvalidCursor),
		errors.Is(err, domain.ErrInvalidTransferType),
		errors.Is(err, domain.ErrIdempotencyKeyMissing),
		errors.Is(err, domain.ErrSystemAccountMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrIdempotencyKeyConflict),
		errors.Is(err, domain.ErrTransferInProgress),
		errors.Is(err, domain.ErrConcurrencyExhausted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
