package store

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/kindling-io/kindling/internal/models"
)

// Remote talks to a store served by kindlingd.
type Remote struct {
	conn *grpc.ClientConn
	own  bool
}

var _ Store = (*Remote)(nil)

// Dial connects to a kindlingd listening on addr. The connection is lazy,
// so an unreachable daemon surfaces as ErrUnavailable on first use.
func Dial(addr string, opts ...grpc.DialOption) (*Remote, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, wrap("dial", "", fmt.Errorf("failed to connect to %s: %w", addr, err))
	}
	return &Remote{conn: conn, own: true}, nil
}

// NewRemote wraps an existing connection. Close leaves it open.
func NewRemote(conn *grpc.ClientConn) *Remote {
	return &Remote{conn: conn}
}

func (r *Remote) invoke(ctx context.Context, method string, req, resp any) error {
	err := r.conn.Invoke(ctx, fullMethod(method), req, resp, grpc.CallContentSubtype(codecName))
	if err != nil {
		return fromStatus(err)
	}
	return nil
}

func (r *Remote) List(ctx context.Context) ([]*models.Project, error) {
	var resp listResponse
	if err := r.invoke(ctx, methodList, &listRequest{}, &resp); err != nil {
		return nil, wrap("list", "", err)
	}
	return resp.Projects, nil
}

func (r *Remote) Get(ctx context.Context, id string) (*models.Project, error) {
	var resp projectResponse
	if err := r.invoke(ctx, methodGet, &idRequest{ID: id}, &resp); err != nil {
		return nil, wrap("get", id, err)
	}
	return resp.Project, nil
}

func (r *Remote) Create(ctx context.Context, opts CreateOptions) (*models.Project, error) {
	var resp projectResponse
	if err := r.invoke(ctx, methodCreate, &opts, &resp); err != nil {
		return nil, wrap("create", "", err)
	}
	return resp.Project, nil
}

func (r *Remote) Update(ctx context.Context, id string, opts UpdateOptions) (*models.Project, error) {
	var resp projectResponse
	if err := r.invoke(ctx, methodUpdate, &updateRequest{ID: id, Options: opts}, &resp); err != nil {
		return nil, wrap("update", id, err)
	}
	return resp.Project, nil
}

func (r *Remote) Delete(ctx context.Context, id string) error {
	var resp emptyResponse
	return wrap("delete", id, r.invoke(ctx, methodDelete, &idRequest{ID: id}, &resp))
}

func (r *Remote) Close() error {
	if !r.own {
		return nil
	}
	return r.conn.Close()
}
