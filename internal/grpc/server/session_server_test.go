package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/cookie-auth/internal/grpc/sessionpb"
	"github.com/magabrotheeeer/cookie-auth/internal/models"
	services "github.com/magabrotheeeer/cookie-auth/internal/services/auth"
	"github.com/magabrotheeeer/cookie-auth/internal/services/session"
)

type MockTokenResolver struct {
	mock.Mock
}

func (m *MockTokenResolver) Resolve(token string) (session.Claims, error) {
	args := m.Called(token)
	return args.Get(0).(session.Claims), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Profile), args.Error(1)
}

var _ sessionpb.SessionServiceServer = (*SessionServer)(nil)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSessionServer_Resolve(t *testing.T) {
	expiresAt := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	claims := session.Claims{SubjectID: "user-1", ExpiresAt: expiresAt, Persistent: true}
	alice := models.Profile{ID: "user-1", Email: "alice@example.com", FullName: "Alice A"}

	t.Run("success", func(t *testing.T) {
		resolver := new(MockTokenResolver)
		profiles := new(MockProfileService)
		resolver.On("Resolve", "token").Return(claims, nil).Once()
		profiles.On("GetProfile", mock.Anything, "user-1").Return(alice, nil).Once()

		srv := NewSessionServer(resolver, profiles, nil, newNoopLogger())
		resp, err := srv.Resolve(context.Background(), wrapperspb.String("token"))
		require.NoError(t, err)

		fields := resp.GetFields()
		assert.Equal(t, "user-1", fields[sessionpb.FieldID].GetStringValue())
		assert.Equal(t, "alice@example.com", fields[sessionpb.FieldEmail].GetStringValue())
		assert.Equal(t, "Alice A", fields[sessionpb.FieldFullName].GetStringValue())
		assert.Equal(t, "2025-03-02T10:00:00Z", fields[sessionpb.FieldExpiresAt].GetStringValue())
		assert.True(t, fields[sessionpb.FieldPersistent].GetBoolValue())
		resolver.AssertExpectations(t)
		profiles.AssertExpectations(t)
	})

	t.Run("invalid token", func(t *testing.T) {
		resolver := new(MockTokenResolver)
		profiles := new(MockProfileService)
		resolver.On("Resolve", "bad").Return(session.Claims{}, session.ErrUnauthenticated).Once()

		srv := NewSessionServer(resolver, profiles, nil, newNoopLogger())
		_, err := srv.Resolve(context.Background(), wrapperspb.String("bad"))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		profiles.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	})

	t.Run("account vanished", func(t *testing.T) {
		resolver := new(MockTokenResolver)
		profiles := new(MockProfileService)
		resolver.On("Resolve", "token").Return(claims, nil).Once()
		profiles.On("GetProfile", mock.Anything, "user-1").Return(models.Profile{}, services.ErrNotFound).Once()

		srv := NewSessionServer(resolver, profiles, nil, newNoopLogger())
		_, err := srv.Resolve(context.Background(), wrapperspb.String("token"))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("store error", func(t *testing.T) {
		resolver := new(MockTokenResolver)
		profiles := new(MockProfileService)
		resolver.On("Resolve", "token").Return(claims, nil).Once()
		profiles.On("GetProfile", mock.Anything, "user-1").Return(models.Profile{}, errors.New("boom")).Once()

		srv := NewSessionServer(resolver, profiles, nil, newNoopLogger())
		_, err := srv.Resolve(context.Background(), wrapperspb.String("token"))
		assert.Equal(t, codes.Internal, status.Code(err))
		assert.NotContains(t, err.Error(), "boom")
	})
}
