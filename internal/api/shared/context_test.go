package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpilot-api/internal/domain"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)
	_, err := uuid.Parse(traceID)
	require.NoError(t, err)

	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(context.Background())))
}

func TestUserFromContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ctx    context.Context
		wantOK bool
	}{
		{"missing", context.Background(), false},
		{"nil user", WithUser(context.Background(), nil), false},
		{"zero id", WithUser(context.Background(), &domain.User{}), false},
		{"wrong type", context.WithValue(context.Background(), UserContextKey, int64(7)), false},
		{"present", WithUser(context.Background(), &domain.User{ID: 7, Email: "a@example.com"}), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, ok := UserFromContext(tc.ctx)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, int64(7), user.ID)
			} else {
				assert.Nil(t, user)
			}
		})
	}
}
