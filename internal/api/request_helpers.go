package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/taskpilot-api/internal/api/shared"
	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/redact"
)

// getCallerFromContext returns the user placed in the context by the
// authentication middleware.
func getCallerFromContext(r *http.Request) (*domain.User, bool) {
	return shared.UserFromContext(r.Context())
}

// getPathID extracts a positive integer id from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required")
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer")
	}
	return id, nil
}

// handleCaller extracts the caller and writes a 401 when it is missing.
func handleCaller(w http.ResponseWriter, r *http.Request, log *slog.Logger) (*domain.User, bool) {
	caller, ok := getCallerFromContext(r)
	if !ok {
		log.Warn("caller not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return caller, true
}

// handleCallerAndPathID is a composite helper that extracts both the caller
// and an id path parameter. It writes an error response if either
// extraction fails.
func handleCallerAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (*domain.User, int64, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	caller, ok := handleCaller(w, r, log)
	if !ok {
		return nil, 0, false
	}

	id, err := getPathID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return nil, 0, false
	}
	return caller, id, true
}

// decodeAndValidate reads the JSON body into v and validates it. It writes a
// 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// parseTaskQuery reads list filters, paging and ordering from the query
// string. Omitted values are left for the service to default.
func parseTaskQuery(values url.Values) (domain.TaskQuery, error) {
	var q domain.TaskQuery

	if v := values.Get("status"); v != "" {
		status, err := domain.ParseTaskStatus(v)
		if err != nil {
			return q, err
		}
		q.Filter.Status = &status
	}
	if v := values.Get("priority"); v != "" {
		q.Filter.Priority = &v
	}
	if v := values.Get("is_archived"); v != "" {
		archived, err := strconv.ParseBool(v)
		if err != nil {
			return q, domain.NewValidationError("is_archived", "must be a boolean")
		}
		q.Filter.IsArchived = &archived
	}
	q.Filter.Search = strings.TrimSpace(values.Get("search"))

	page, err := intParam(values, "page", 1, 0)
	if err != nil {
		return q, err
	}
	size, err := intParam(values, "size", 1, domain.MaxPageSize)
	if err != nil {
		return q, err
	}
	q.Page, q.Size = page, size

	q.SortBy = values.Get("sort_by")
	q.SortOrder = domain.ParseSortOrder(values.Get("sort_order"))
	return q, nil
}

// intParam parses an optional integer parameter within [lo, hi]; hi of 0
// means unbounded. A missing parameter yields 0.
func intParam(values url.Values, name string, lo, hi int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	if n < lo || (hi > 0 && n > hi) {
		if hi > 0 {
			return 0, domain.NewValidationError(name, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
		}
		return 0, domain.NewValidationError(name, "must be at least "+strconv.Itoa(lo))
	}
	return n, nil
}

// logAttrsForCaller returns the attributes identifying the caller in logs.
func logAttrsForCaller(u *domain.User) []any {
	return []any{slog.Int64("user_id", u.ID), slog.String("email", redact.String(u.Email))}
}
