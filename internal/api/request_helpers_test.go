package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpilot-api/internal/domain"
)

func requestWithPathParam(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathID(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"", 0, true},
		{"0", 0, true},
		{"-1", 0, true},
		{"1e3", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			id, err := getPathID(requestWithPathParam("id", tt.value), "id")
			if tt.wantErr {
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestParseTaskQuery(t *testing.T) {
	values := url.Values{
		"status":      {"in_progress"},
		"priority":    {"high"},
		"is_archived": {"true"},
		"search":      {"  report "},
		"page":        {"3"},
		"size":        {"50"},
		"sort_by":     {"due_date"},
		"sort_order":  {"ASC"},
	}

	q, err := parseTaskQuery(values)
	require.NoError(t, err)
	require.NotNil(t, q.Filter.Status)
	assert.Equal(t, domain.StatusInProgress, *q.Filter.Status)
	require.NotNil(t, q.Filter.Priority)
	assert.Equal(t, "high", *q.Filter.Priority)
	require.NotNil(t, q.Filter.IsArchived)
	assert.True(t, *q.Filter.IsArchived)
	assert.Equal(t, "report", q.Filter.Search)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 50, q.Size)
	assert.Equal(t, "due_date", q.SortBy)
	assert.Equal(t, domain.SortAsc, q.SortOrder)
}

func TestParseTaskQueryDefaults(t *testing.T) {
	q, err := parseTaskQuery(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, q.Filter.Status)
	assert.Nil(t, q.Filter.IsArchived)
	assert.Zero(t, q.Page)
	assert.Zero(t, q.Size)
	assert.Empty(t, q.SortBy)
	assert.Equal(t, domain.SortDesc, q.SortOrder)
}

func TestParseTaskQueryErrors(t *testing.T) {
	for _, raw := range []string{
		"status=archived", "is_archived=yes", "page=0", "page=-2", "page=two", "size=0", "size=500",
	} {
		values, err := url.ParseQuery(raw)
		require.NoError(t, err)
		_, err = parseTaskQuery(values)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err), raw)
	}
}
