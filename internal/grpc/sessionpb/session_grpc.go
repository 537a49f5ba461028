// Package sessionpb описывает gRPC-сервис cookieauth.v1.SessionService.
//
// Сообщения — стандартные типы protobuf: токен передаётся в
// wrapperspb.StringValue, профиль и срок сессии возвращаются в structpb.Struct.
package sessionpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName — полное имя сервиса.
	ServiceName = "cookieauth.v1.SessionService"
	// ResolveFullMethod — полное имя метода Resolve.
	ResolveFullMethod = "/" + ServiceName + "/Resolve"
)

// Поля ответа Resolve.
const (
	FieldID         = "id"
	FieldEmail      = "email"
	FieldFullName   = "fullName"
	FieldExpiresAt  = "expiresAt"
	FieldPersistent = "persistent"
)

// SessionServiceServer — серверная часть SessionService.
type SessionServiceServer interface {
	Resolve(ctx context.Context, token *wrapperspb.StringValue) (*structpb.Struct, error)
}

// SessionServiceClient — клиентская часть SessionService.
type SessionServiceClient interface {
	Resolve(ctx context.Context, token *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type sessionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSessionServiceClient создаёт клиента поверх соединения cc.
func NewSessionServiceClient(cc grpc.ClientConnInterface) SessionServiceClient {
	return &sessionServiceClient{cc: cc}
}

func (c *sessionServiceClient) Resolve(ctx context.Context, token *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ResolveFullMethod, token, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterSessionServiceServer регистрирует реализацию srv на сервере s.
func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionServiceDesc, srv)
}

func resolveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServiceServer).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ResolveFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServiceServer).Resolve(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// SessionServiceDesc — описание сервиса для grpc.Server.
var SessionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Resolve",
			Handler:    resolveHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cookieauth/v1/session.proto",
}
