package store

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/kindling-io/kindling/internal/models"
)

// The project service is described by hand and carried as JSON, so no
// generated protobuf code is needed on either side.
const (
	serviceName = "kindling.store.v1.ProjectStore"

	methodList   = "List"
	methodGet    = "Get"
	methodCreate = "Create"
	methodUpdate = "Update"
	methodDelete = "Delete"

	codecName = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return codecName }

type listRequest struct{}

type listResponse struct {
	Projects []*models.Project `json:"projects"`
}

type idRequest struct {
	ID string `json:"id"`
}

type updateRequest struct {
	ID      string        `json:"id"`
	Options UpdateOptions `json:"options"`
}

type projectResponse struct {
	Project *models.Project `json:"project"`
}

type emptyResponse struct{}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

// RegisterService exposes st on s.
func RegisterService(s grpc.ServiceRegistrar, st Store) {
	s.RegisterService(&serviceDesc, st)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Store)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodList, Handler: unary(methodList, func(ctx context.Context, st Store, _ *listRequest) (any, error) {
			ps, err := st.List(ctx)
			return &listResponse{Projects: ps}, err
		})},
		{MethodName: methodGet, Handler: unary(methodGet, func(ctx context.Context, st Store, req *idRequest) (any, error) {
			p, err := st.Get(ctx, req.ID)
			return &projectResponse{Project: p}, err
		})},
		{MethodName: methodCreate, Handler: unary(methodCreate, func(ctx context.Context, st Store, req *CreateOptions) (any, error) {
			p, err := st.Create(ctx, *req)
			return &projectResponse{Project: p}, err
		})},
		{MethodName: methodUpdate, Handler: unary(methodUpdate, func(ctx context.Context, st Store, req *updateRequest) (any, error) {
			p, err := st.Update(ctx, req.ID, req.Options)
			return &projectResponse{Project: p}, err
		})},
		{MethodName: methodDelete, Handler: unary(methodDelete, func(ctx context.Context, st Store, req *idRequest) (any, error) {
			return &emptyResponse{}, st.Delete(ctx, req.ID)
		})},
	},
	Streams: []grpc.StreamDesc{},
}

// unary adapts a typed handler to grpc's method handler signature,
// including interceptor support.
func unary[Req any](method string, fn func(context.Context, Store, *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		st := srv.(Store)
		handler := func(ctx context.Context, r any) (any, error) {
			resp, err := fn(ctx, st, r.(*Req))
			if err != nil {
				return nil, toStatus(err)
			}
			return resp, nil
		}
		if interceptor == nil {
			return handler(ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		return interceptor(ctx, req, info, handler)
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// fromStatus maps a grpc status back onto the store's sentinel errors.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return errors.Join(ErrInvalid, errors.New(st.Message()))
	case codes.Unavailable:
		return errors.Join(ErrUnavailable, errors.New(st.Message()))
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return errors.New(st.Message())
	}
}
