//go:build unit

package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/readstore"
	"scent-fulfillment/internal/pkg/clock"
	"scent-fulfillment/internal/pkg/jwt"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessionFinder struct {
	mock.Mock
}

func (m *mockSessionFinder) FindByDigest(ctx context.Context, digest []byte, now time.Time) (*readstore.Session, error) {
	args := m.Called(ctx, digest, now)
	if s := args.Get(0); s != nil {
		return s.(*readstore.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

const sessionCookie = "authjs.session-token"

func TestJWTProvider_Resolve(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)
	userID := uuid.New()
	token, err := svc.GenerateToken(userID, jwt.RoleAdmin)
	require.NoError(t, err)

	p := NewJWTProvider(svc, "access_token")

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		want    *uuid.UUID
	}{
		{
			name:    "cookie",
			prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: token}) },
			want:    &userID,
		},
		{
			name:    "bearer header",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			want:    &userID,
		},
		{
			name:    "no token",
			prepare: func(r *http.Request) {},
		},
		{
			name:    "garbage token",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(r)

			id, err := p.Resolve(context.Background(), r)

			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, id)
				return
			}
			require.NotNil(t, id)
			assert.Equal(t, *tt.want, id.UserID)
			assert.Equal(t, jwt.RoleAdmin, id.Role)
			assert.Equal(t, shared.ProviderJWT, id.Provider)
		})
	}
}

func TestSessionProvider_Resolve(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	userID := uuid.New()

	t.Run("chunked cookie is joined before hashing", func(t *testing.T) {
		finder := new(mockSessionFinder)
		finder.On("FindByDigest", mock.Anything, Digest("abcdef"), now).
			Return(&readstore.Session{UserID: userID, ExpiresAt: now.Add(time.Hour)}, nil)
		p := NewSessionProvider(finder, clk, sessionCookie)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookie + ".0", Value: "abc"})
		r.AddCookie(&http.Cookie{Name: sessionCookie + ".1", Value: "def"})

		id, err := p.Resolve(context.Background(), r)

		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, userID, id.UserID)
		assert.Equal(t, jwt.RoleCustomer, id.Role)
		assert.Equal(t, shared.ProviderSession, id.Provider)
		finder.AssertExpectations(t)
	})

	t.Run("unknown session", func(t *testing.T) {
		finder := new(mockSessionFinder)
		finder.On("FindByDigest", mock.Anything, mock.Anything, now).
			Return(nil, infra.WrapRepoErr("session not found", errors.New("no rows"), infra.KindNotFound))
		p := NewSessionProvider(finder, clk, sessionCookie)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookie, Value: "stale"})

		id, err := p.Resolve(context.Background(), r)

		require.NoError(t, err)
		assert.Nil(t, id)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		finder := new(mockSessionFinder)
		finder.On("FindByDigest", mock.Anything, mock.Anything, now).
			Return(nil, infra.WrapRepoErr("failed to find session", assert.AnError))
		p := NewSessionProvider(finder, clk, sessionCookie)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookie, Value: "tok"})

		_, err := p.Resolve(context.Background(), r)

		assert.Error(t, err)
	})

	t.Run("no cookie skips the store", func(t *testing.T) {
		finder := new(mockSessionFinder)
		p := NewSessionProvider(finder, clk, sessionCookie)

		id, err := p.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.NoError(t, err)
		assert.Nil(t, id)
		finder.AssertNotCalled(t, "FindByDigest", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDigest(t *testing.T) {
	d := Digest("token")
	assert.Len(t, d, 32)
	assert.Equal(t, d, Digest("token"))
	assert.NotEqual(t, d, Digest("token2"))
}

type staticProvider struct {
	id  uuid.UUID
	hit *int
}

func (s staticProvider) Resolve(context.Context, *http.Request) (*shared.Identity, error) {
	*s.hit++
	if s.id == uuid.Nil {
		return nil, nil
	}
	return &shared.Identity{UserID: s.id}, nil
}

func TestChain_Resolve(t *testing.T) {
	var firstHits, secondHits int
	want := uuid.New()
	chain := NewChain(
		staticProvider{hit: &firstHits},
		staticProvider{id: want, hit: &secondHits},
		staticProvider{id: uuid.New(), hit: new(int)},
	)

	id, err := chain.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, want, id.UserID)
	assert.Equal(t, 1, firstHits)
	assert.Equal(t, 1, secondHits)
}
