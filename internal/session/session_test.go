package session

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		user      string
		workspace string
		wantErr   error
	}{
		{name: "valid", user: "pharm1", workspace: "north"},
		{name: "trims input", user: "  pharm1 ", workspace: " north "},
		{name: "missing user", user: " ", workspace: "north", wantErr: ErrMissingUser},
		{name: "missing workspace", user: "pharm1", workspace: "", wantErr: ErrMissingWorkspace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Login(tt.user, tt.workspace)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "pharm1", s.User())
			assert.Equal(t, "north", s.Workspace())
			assert.True(t, s.Active())
			assert.False(t, s.CreatedAt().IsZero())

			_, parseErr := ulid.Parse(s.ID())
			assert.NoError(t, parseErr)
		})
	}
}

func TestLogout(t *testing.T) {
	s, err := Login("pharm1", "north")
	require.NoError(t, err)

	s.Logout()
	assert.False(t, s.Active())
	first := s.LoggedOutAt()
	assert.False(t, first.IsZero())

	s.Logout()
	assert.Equal(t, first, s.LoggedOutAt())
}

func TestSessionsAreIndependent(t *testing.T) {
	a, err := Login("a", "north")
	require.NoError(t, err)
	b, err := Login("b", "south")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	a.Logout()
	assert.True(t, b.Active())
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	_, err := Require(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	s, err := Login("pharm1", "north")
	require.NoError(t, err)
	ctx = NewContext(ctx, s)
	assert.Same(t, s, FromContext(ctx))

	got, err := Require(ctx)
	require.NoError(t, err)
	assert.Same(t, s, got)

	s.Logout()
	_, err = Require(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}
