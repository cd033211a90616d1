package grpc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/DRSN-tech/storefront-assistant/internal/tools"
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	toolServiceName = "assistant.v1.ToolService"
	invokeMethod    = "/" + toolServiceName + "/Invoke"
	listToolsMethod = "/" + toolServiceName + "/ListTools"

	fieldTool      = "tool"
	fieldSessionID = "sessionId"
	fieldToken     = "token"
	fieldArguments = "arguments"
)

// ToolRegistry — то, что gRPC-слою нужно от реестра инструментов.
type ToolRegistry interface {
	Declarations() []tools.Declaration
	Invoke(ctx context.Context, caller usecase.Caller, name string, args json.RawMessage) (usecase.Result, error)
}

// ToolServiceServer — сервис вызова инструментов поверх google.protobuf.Struct.
type ToolServiceServer interface {
	Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListTools(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type ToolService struct {
	registry ToolRegistry
	logger   logger.Logger
}

func NewToolService(registry ToolRegistry, logger logger.Logger) *ToolService {
	return &ToolService{registry: registry, logger: logger}
}

// Invoke ожидает {tool, sessionId, token?, arguments?} и возвращает конверт результата.
func (s *ToolService) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "ToolService.Invoke"

	fields := req.GetFields()
	name := strings.TrimSpace(fields[fieldTool].GetStringValue())
	if name == "" {
		return nil, GRPCErrorResponse(e.Wrap(op, e.ErrInvalidArguments))
	}

	caller := usecase.Caller{
		SessionID: strings.TrimSpace(fields[fieldSessionID].GetStringValue()),
		Token:     fields[fieldToken].GetStringValue(),
	}
	if caller.SessionID == "" {
		return nil, GRPCErrorResponse(e.Wrap(op, e.ErrSessionRequired))
	}
	if caller.Token == "" {
		caller.Token = bearerFromMetadata(ctx)
	}

	var args json.RawMessage
	if a := fields[fieldArguments].GetStructValue(); a != nil {
		raw, err := protojson.Marshal(a)
		if err != nil {
			return nil, GRPCErrorResponse(e.Wrap(op, e.ErrInvalidArguments))
		}
		args = raw
	}

	res, err := s.registry.Invoke(ctx, caller, name, args)
	if err != nil {
		s.logger.Warnf("%v", e.Wrap(op, err))
		return nil, GRPCErrorResponse(err)
	}

	out, err := toStruct(res)
	if err != nil {
		s.logger.Errorf(err, "%s: encode result of %s", op, name)
		return nil, GRPCErrorResponse(err)
	}
	return out, nil
}

// ListTools возвращает {tools: [...]}.
func (s *ToolService) ListTools(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	const op = "ToolService.ListTools"

	out, err := toStruct(map[string]any{"tools": s.registry.Declarations()})
	if err != nil {
		s.logger.Errorf(err, "%s: encode declarations", op)
		return nil, GRPCErrorResponse(err)
	}
	return out, nil
}

func bearerFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	for _, v := range md.Get("authorization") {
		if token, found := strings.CutPrefix(v, "Bearer "); found {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// ToolServiceDesc описывает сервис без сгенерированного кода: сообщения имеют тип google.protobuf.Struct.
var ToolServiceDesc = grpc.ServiceDesc{
	ServiceName: toolServiceName,
	HandlerType: (*ToolServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Invoke", Handler: unaryHandler(invokeMethod, ToolServiceServer.Invoke)},
		{MethodName: "ListTools", Handler: unaryHandler(listToolsMethod, ToolServiceServer.ListTools)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "assistant/v1/tools.proto",
}

func unaryHandler(
	fullMethod string,
	call func(ToolServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(ToolServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ToolServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var _ ToolServiceServer = (*ToolService)(nil)
