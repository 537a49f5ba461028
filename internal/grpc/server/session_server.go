// Package server реализует gRPC-сервер проверки cookie сессии.
//
// Соседние сервисы передают значение cookie и получают профиль владельца
// и срок действия сессии. Логирует операции и ошибки.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/cookie-auth/internal/grpc/sessionpb"
	"github.com/magabrotheeeer/cookie-auth/internal/lib/sl"
	"github.com/magabrotheeeer/cookie-auth/internal/metrics"
	"github.com/magabrotheeeer/cookie-auth/internal/models"
	services "github.com/magabrotheeeer/cookie-auth/internal/services/auth"
	"github.com/magabrotheeeer/cookie-auth/internal/services/session"
)

// TokenResolver проверяет токен сессии.
type TokenResolver interface {
	Resolve(token string) (session.Claims, error)
}

// ProfileService возвращает профиль по ID.
type ProfileService interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
}

// SessionServer реализует sessionpb.SessionServiceServer.
type SessionServer struct {
	sessions TokenResolver
	profiles ProfileService
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewSessionServer создает новый экземпляр SessionServer.
func NewSessionServer(sessions TokenResolver, profiles ProfileService, m *metrics.Metrics, logger *slog.Logger) *SessionServer {
	return &SessionServer{
		sessions: sessions,
		profiles: profiles,
		metrics:  m,
		log:      logger,
	}
}

// Resolve проверяет токен и возвращает профиль владельца сессии.
func (s *SessionServer) Resolve(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.server.Resolve"
	log := s.log.With(slog.String("op", op))

	claims, err := s.sessions.Resolve(req.GetValue())
	if err != nil {
		log.Info("invalid session token", sl.Err(err))
		s.metrics.SessionResolved(metrics.ResultUnauthorized)
		return nil, status.Error(codes.Unauthenticated, "invalid session")
	}

	profile, err := s.profiles.GetProfile(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Info("account not found", slog.String("user_id", claims.SubjectID))
			s.metrics.SessionResolved(metrics.ResultNotFound)
			return nil, status.Error(codes.NotFound, "account not found")
		}
		log.Error("failed to get profile", sl.Err(err))
		s.metrics.SessionResolved(metrics.ResultError)
		return nil, status.Error(codes.Internal, "internal error")
	}

	resp, err := structpb.NewStruct(map[string]any{
		sessionpb.FieldID:         profile.ID,
		sessionpb.FieldEmail:      profile.Email,
		sessionpb.FieldFullName:   profile.FullName,
		sessionpb.FieldExpiresAt:  claims.ExpiresAt.UTC().Format(time.RFC3339),
		sessionpb.FieldPersistent: claims.Persistent,
	})
	if err != nil {
		log.Error("failed to build response", sl.Err(err))
		s.metrics.SessionResolved(metrics.ResultError)
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.metrics.SessionResolved(metrics.ResultSuccess)
	return resp, nil
}
