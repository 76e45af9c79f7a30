package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/taskpilot-api/internal/api/shared"
	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/service"
	"github.com/phrazzld/taskpilot-api/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on their domain kind. Unknown errors are internal server errors.
func MapErrorToStatusCode(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	return shared.StatusForKind(domain.KindOf(err))
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. Only messages authored in this codebase are
// returned; wrapped driver or provider text never is.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()

	// Conflict errors
	case errors.Is(err, auth.ErrEmailTaken):
		return "Email already registered"
	case errors.Is(err, auth.ErrUsernameTaken):
		return "Username already taken"

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Incorrect email or password"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Could not validate credentials"

	case errors.Is(err, auth.ErrInactiveUser):
		return "Inactive user account"

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, auth.ErrAccountNotLinked):
		return "User not found in local database"
	case errors.Is(err, auth.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, auth.ErrPartialSignup):
		return "Registration could not be completed, please contact support"
	case errors.Is(err, auth.ErrIdentityUnavailable):
		return "Authentication service unavailable"
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		return "Validation error"
	case domain.KindConflict:
		return "Resource already exists"
	case domain.KindUnauthorized:
		return "Could not validate credentials"
	case domain.KindForbidden:
		return "Forbidden"
	case domain.KindNotFound:
		return "Resource not found"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for err. fallback replaces the generic
// message of internal errors when set.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError turns validator output into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	field := fe.Field()
	switch ns := fe.Namespace(); {
	case strings.HasPrefix(ns, "["):
		// slice element of a bare array body, e.g. [1].title
		field = ns
	case strings.Contains(ns, "."):
		// drop the struct name
		field = ns[strings.Index(ns, ".")+1:]
	}
	return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
