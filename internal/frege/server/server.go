package server

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	coreGrpc "github.com/msto63/frege/pkg/core/grpc"
	"github.com/msto63/frege/pkg/core/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Ensure Server implements EvaluatorServer
var _ EvaluatorServer = (*Server)(nil)

// Server is the frege.v1.Evaluator gRPC server
type Server struct {
	service   *service.Service
	grpc      *coreGrpc.Server
	logger    *logging.Logger
	startTime time.Time
}

// Config holds server configuration
type Config struct {
	Host             string
	Port             int
	MaxRecvMsgSize   int
	EnableReflection bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	d := coreGrpc.DefaultServerConfig()
	return Config{
		Host:             d.Host,
		Port:             d.Port,
		MaxRecvMsgSize:   d.MaxRecvMsgSize,
		EnableReflection: d.EnableReflection,
	}
}

// New creates the gRPC server around svc
func New(cfg Config, svc *service.Service) *Server {
	grpcCfg := coreGrpc.DefaultServerConfig()
	grpcCfg.Host = cfg.Host
	grpcCfg.Port = cfg.Port
	grpcCfg.EnableReflection = cfg.EnableReflection
	if cfg.MaxRecvMsgSize > 0 {
		grpcCfg.MaxRecvMsgSize = cfg.MaxRecvMsgSize
	}

	server := &Server{
		service:   svc,
		grpc:      coreGrpc.NewServer(grpcCfg),
		logger:    logging.New("frege-grpc"),
		startTime: time.Now(),
	}

	// Register gRPC service
	RegisterEvaluatorServer(server.grpc.GRPCServer(), server)
	server.grpc.SetServing(ServiceName, true)

	return server
}

// Evaluate implements frege.v1.Evaluator/Evaluate. Syntax errors and
// evaluation faults are part of the response; only invalid requests and
// infrastructure failures end in a status error.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source := req.GetFields()["source"].GetStringValue()
	if strings.TrimSpace(source) == "" {
		return nil, status.Error(codes.InvalidArgument, "source is required")
	}

	resp, err := s.service.Evaluate(ctx, service.EvaluateRequest{
		Source:  source,
		Session: req.GetFields()["session"].GetStringValue(),
		Origin:  store.OriginGRPC,
	})
	if resp == nil {
		return nil, err
	}
	return evaluateResponseToStruct(resp)
}

// Parse implements frege.v1.Evaluator/Parse
func (s *Server) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source := req.GetFields()["source"].GetStringValue()
	if strings.TrimSpace(source) == "" {
		return nil, status.Error(codes.InvalidArgument, "source is required")
	}

	resp, err := s.service.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	return parseResponseToStruct(resp)
}

// Start starts the server and blocks
func (s *Server) Start() error {
	s.logger.Info("Starting Evaluator gRPC server", "address", s.grpc.Address())
	return s.grpc.Start()
}

// StartAsync starts the server in a goroutine
func (s *Server) StartAsync() error {
	s.logger.Info("Starting Evaluator gRPC server (async)", "address", s.grpc.Address())
	return s.grpc.StartAsync()
}

// Serve serves on an existing listener
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop gracefully stops the server
func (s *Server) Stop() {
	s.logger.Info("Stopping Evaluator gRPC server", "uptime", time.Since(s.startTime).String())
	s.grpc.Stop()
}

// StopWithTimeout stops the server, forcing it after ctx expires
func (s *Server) StopWithTimeout(ctx context.Context) {
	s.grpc.StopWithTimeout(ctx)
}

// Address returns the listen address
func (s *Server) Address() string {
	return s.grpc.Address()
}
