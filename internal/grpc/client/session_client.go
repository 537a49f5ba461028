// Package client содержит gRPC-клиент SessionService для соседних сервисов.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/cookie-auth/internal/grpc/sessionpb"
	"github.com/magabrotheeeer/cookie-auth/internal/models"
)

var (
	// ErrUnauthenticated — сервер отклонил токен.
	ErrUnauthenticated = errors.New("Unauthenticated")
	// ErrNotFound — учётная запись владельца сессии удалена.
	ErrNotFound = errors.New("NotFound")
)

// ResolvedSession — ответ SessionService.Resolve.
type ResolvedSession struct {
	Profile    models.Profile
	ExpiresAt  time.Time
	Persistent bool
}

// SessionClient вызывает SessionService.
type SessionClient struct {
	conn   *grpc.ClientConn
	client sessionpb.SessionServiceClient
}

// NewSessionClient подключается к SessionService по адресу addr.
func NewSessionClient(addr string, opts ...grpc.DialOption) (*SessionClient, error) {
	const op = "grpc.client.NewSessionClient"

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SessionClient{conn: conn, client: sessionpb.NewSessionServiceClient(conn)}, nil
}

// Close закрывает соединение.
func (c *SessionClient) Close() error {
	return c.conn.Close()
}

// Resolve проверяет значение cookie сессии на сервере.
func (c *SessionClient) Resolve(ctx context.Context, token string) (ResolvedSession, error) {
	const op = "grpc.client.Resolve"

	resp, err := c.client.Resolve(ctx, wrapperspb.String(token))
	if err != nil {
		switch status.Code(err) {
		case codes.Unauthenticated:
			return ResolvedSession{}, ErrUnauthenticated
		case codes.NotFound:
			return ResolvedSession{}, ErrNotFound
		}
		return ResolvedSession{}, fmt.Errorf("%s: %w", op, err)
	}

	fields := resp.GetFields()
	expiresAt, err := time.Parse(time.RFC3339, fields[sessionpb.FieldExpiresAt].GetStringValue())
	if err != nil {
		return ResolvedSession{}, fmt.Errorf("%s: %w", op, err)
	}

	return ResolvedSession{
		Profile: models.Profile{
			ID:       fields[sessionpb.FieldID].GetStringValue(),
			Email:    fields[sessionpb.FieldEmail].GetStringValue(),
			FullName: fields[sessionpb.FieldFullName].GetStringValue(),
		},
		ExpiresAt:  expiresAt,
		Persistent: fields[sessionpb.FieldPersistent].GetBoolValue(),
	}, nil
}
