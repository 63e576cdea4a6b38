package server

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	frgerror "github.com/msto63/frege/foundation/core/error"
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/lang"
	"github.com/msto63/frege/foundation/lang/diagnostics"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	coreGrpc "github.com/msto63/frege/pkg/core/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T) (*Client, *grpc.ClientConn, *store.MemoryRunStore) {
	t.Helper()

	runs := store.NewMemoryRunStore()
	cfg := service.DefaultConfig()
	cfg.Engine = lang.Options{Logger: frglog.Discard()}
	cfg.Store = runs
	svc := service.NewService(cfg)
	t.Cleanup(func() { svc.Close() })

	srvCfg := DefaultConfig()
	srvCfg.EnableReflection = false
	srv := New(srvCfg, svc)

	lis := bufconn.Listen(1024 * 1024)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := coreGrpc.Dial(coreGrpc.DefaultClientConfig("passthrough:///bufnet"),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewClient(conn), conn, runs
}

func TestEvaluator_Evaluate(t *testing.T) {
	client, _, runs := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Evaluate(ctx, "let r = 3; r * r + 1", "")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if resp.Value != "10" || !resp.HasValue || resp.RunID == "" {
		t.Errorf("Evaluate() = %+v", resp)
	}

	got, err := runs.Get(ctx, resp.RunID)
	if err != nil || got.Origin != store.OriginGRPC {
		t.Errorf("recorded run = %+v, %v", got, err)
	}
}

func TestEvaluator_FaultInResponse(t *testing.T) {
	client, _, _ := startServer(t)
	ctx := context.Background()

	resp, err := client.Evaluate(ctx, "1 + (2", "")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if resp.HasValue || resp.ErrorCode != string(frgerror.CodeSyntax) || len(resp.Diagnostics) == 0 {
		t.Errorf("Evaluate() = %+v", resp)
	}
	if resp.Diagnostics[0].Severity != diagnostics.SeverityError {
		t.Errorf("severity = %v", resp.Diagnostics[0].Severity)
	}

	resp, err = client.Evaluate(ctx, "g(1)", "")
	if err != nil || resp.ErrorCode != string(frgerror.CodeUndefinedFunction) {
		t.Errorf("Evaluate(g(1)) = %+v, %v", resp, err)
	}
	if len(resp.Diagnostics) != 1 || resp.Diagnostics[0].Severity != diagnostics.SeverityWarning {
		t.Errorf("checker warning missing: %+v", resp.Diagnostics)
	}
}

func TestEvaluator_Session(t *testing.T) {
	client, _, _ := startServer(t)
	ctx := context.Background()

	if _, err := client.Evaluate(ctx, "func twice(n) { return 2 * n; }", "s"); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	resp, err := client.Evaluate(ctx, "twice(21)", "s")
	if err != nil || resp.Value != "42" || resp.Session != "s" {
		t.Errorf("Evaluate() = %+v, %v", resp, err)
	}
}

func TestEvaluator_InvalidArgument(t *testing.T) {
	client, _, _ := startServer(t)

	_, err := client.Evaluate(context.Background(), "  ", "")
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("Evaluate(blank) error = %v", err)
	}
	_, err = client.Parse(context.Background(), "")
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("Parse(empty) error = %v", err)
	}
}

func TestEvaluator_Parse(t *testing.T) {
	client, _, _ := startServer(t)

	resp, err := client.Parse(context.Background(), "f(1, 2,)")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !strings.Contains(resp.Tree, "Call f") || len(resp.Diagnostics) != 0 || len(resp.Nodes) != 1 {
		t.Errorf("Parse() = %+v", resp)
	}
	node, ok := resp.Nodes[0].(map[string]interface{})
	if !ok || node["node"] != "ExpressionStatement" {
		t.Errorf("nodes[0] = %#v", resp.Nodes[0])
	}
}

func TestEvaluator_Health(t *testing.T) {
	_, conn, _ := startServer(t)

	ok, err := coreGrpc.CheckHealth(context.Background(), conn, ServiceName)
	if err != nil || !ok {
		t.Errorf("CheckHealth(%s) = %v, %v", ServiceName, ok, err)
	}
}
