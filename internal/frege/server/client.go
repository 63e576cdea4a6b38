package server

import (
	"context"

	"github.com/msto63/frege/internal/frege/service"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote frege.v1.Evaluator
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a client on an established connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Evaluate evaluates source remotely. session may be empty.
func (c *Client) Evaluate(ctx context.Context, source, session string, opts ...grpc.CallOption) (*service.EvaluateResponse, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"source":  source,
		"session": session,
	})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, evaluateMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return evaluateResponseFromStruct(out), nil
}

// Parse parses source remotely
func (c *Client) Parse(ctx context.Context, source string, opts ...grpc.CallOption) (*service.ParseResponse, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"source": source})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, parseMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return parseResponseFromStruct(out), nil
}
