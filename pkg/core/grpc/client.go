package grpc

import (
	"context"
	"fmt"
	"time"

	frgerror "github.com/msto63/frege/foundation/core/error"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ClientConfig holds gRPC client configuration
type ClientConfig struct {
	Target            string
	Timeout           time.Duration
	MaxRecvMsgSize    int
	MaxSendMsgSize    int
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
}

// DefaultClientConfig returns a default client configuration
func DefaultClientConfig(target string) ClientConfig {
	return ClientConfig{
		Target:            target,
		Timeout:           10 * time.Second,
		MaxRecvMsgSize:    4 * 1024 * 1024, // 4MB
		MaxSendMsgSize:    4 * 1024 * 1024, // 4MB
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
	}
}

// Dial creates a new gRPC client connection
func Dial(cfg ClientConfig, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(cfg.MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(cfg.MaxSendMsgSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.KeepaliveInterval,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithChainUnaryInterceptor(
			ClientRequestIDInterceptor(),
			ClientLoggingInterceptor(),
		),
	}

	// Append custom options
	dialOpts = append(dialOpts, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, cfg.Target, dialOpts...)
	if err != nil {
		return nil, frgerror.Wrap(err, fmt.Sprintf("failed to dial %s", cfg.Target)).
			WithCode(frgerror.CodeConnectionFailed).
			WithDetail("target", cfg.Target)
	}

	return conn, nil
}

// DialWithTimeout creates a gRPC client connection with a custom timeout
func DialWithTimeout(target string, timeout time.Duration) (*grpc.ClientConn, error) {
	cfg := DefaultClientConfig(target)
	cfg.Timeout = timeout
	return Dial(cfg)
}

// CheckHealth asks the standard health service whether service is serving
func CheckHealth(ctx context.Context, conn *grpc.ClientConn, service string) (bool, error) {
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return false, frgerror.Wrap(err, "health check failed").WithCode(frgerror.CodeServiceUnavailable)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}
