package grpc

import (
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrUnknownTool):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, e.ErrSessionRequired), e.KindOf(err) == e.KindValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

// toStruct переводит JSON-сериализуемое значение в google.protobuf.Struct.
// Круг через JSON нужен для типов, которых structpb не знает ([]string, структуры).
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	return structpb.NewStruct(m)
}
