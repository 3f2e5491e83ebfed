package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/service"
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/service/card_review"
	"github.com/phrazzld/quill-api/internal/store"
)

// Domain validation errors that reach the API as 400s.
var domainValidationErrors = []error{
	domain.ErrInvalidEmail,
	domain.ErrEmptyEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrEmptyPassword,
	domain.ErrEmptyTargetLanguage,
	domain.ErrEmptyDeckName,
	domain.ErrDeckNameTooLong,
	domain.ErrCardContentEmpty,
	domain.ErrCardContentInvalid,
	domain.ErrEmptyEntryText,
	domain.ErrEntryTextTooLong,
	domain.ErrInvalidID,
	domain.ErrValidation,
}

// MapErrorToStatusCode maps an error returned by a service to the HTTP
// status of the response.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, card_review.ErrCardNotOwned):
		return http.StatusForbidden

	case errors.Is(err, card_review.ErrCardNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	case store.IsDuplicateError(err):
		return http.StatusConflict

	case errors.Is(err, card_review.ErrInvalidAnswer),
		errors.Is(err, card_review.ErrInvalidPostpone),
		errors.Is(err, domain.ErrInvalidReviewOutcome),
		errors.Is(err, service.ErrInvalidHorizon),
		errors.Is(err, store.ErrInvalidEntity),
		isDomainValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func isDomainValidationError(err error) bool {
	return domainValidationError(err) != nil
}

// domainValidationError returns the domain validation sentinel err wraps.
func domainValidationError(err error) error {
	for _, target := range domainValidationErrors {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

// GetSafeErrorMessage returns a message for err that is safe to show to
// clients. Unexpected errors get a generic message.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, card_review.ErrCardNotOwned):
		return "You do not have access to this resource"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"
	case errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, card_review.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrReviewStateNotFound):
		return "Review state not found"
	case errors.Is(err, store.ErrJournalEntryNotFound):
		return "Journal entry not found"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, card_review.ErrInvalidAnswer):
		return "Invalid answer: outcome must be forgot, good or easy"
	case errors.Is(err, card_review.ErrInvalidPostpone):
		return "Postpone days must be at least 1"
	case errors.Is(err, service.ErrInvalidHorizon):
		return "Invalid forecast horizon"
	case isDomainValidationError(err):
		// Domain validation messages carry no internals.
		return upperFirst(domainValidationError(err).Error())
	case store.IsNotFoundError(err):
		return "Resource not found"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError describes the first failed validate tag without
// exposing Go type names.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Invalid %s: required field", field)
	case "email":
		return fmt.Sprintf("Invalid %s: invalid email format", field)
	case "min", "gte":
		return fmt.Sprintf("Invalid %s: must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("Invalid %s: must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("Invalid %s: must be one of %s", field, fe.Param())
	default:
		return fmt.Sprintf("Invalid %s", field)
	}
}

// HandleAPIError writes the response for a failed request. message, when
// not empty, replaces the safe message derived from err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
