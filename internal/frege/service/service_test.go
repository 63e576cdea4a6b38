package service

import (
	"context"
	"strings"
	"testing"
	"time"

	frgerror "github.com/msto63/frege/foundation/core/error"
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/lang"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/pkg/core/config"
	"github.com/msto63/frege/pkg/core/health"
)

func newService(t *testing.T) (*Service, *store.MemoryRunStore) {
	t.Helper()
	runs := store.NewMemoryRunStore()
	cfg := DefaultConfig()
	cfg.Engine = lang.Options{Logger: frglog.Discard()}
	cfg.Store = runs
	svc := NewService(cfg)
	t.Cleanup(func() { svc.Close() })
	return svc, runs
}

func TestService_Evaluate(t *testing.T) {
	svc, runs := newService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		source   string
		want     string
		wantCode frgerror.Code
	}{
		{"arithmetic", "1 + 2 * 3", "7", ""},
		{"division by zero", "1 / 0", "+Inf", ""},
		{"function", "func sq(x) { return x * x; } sq(7)", "49", ""},
		{"syntax", "1 +", "", frgerror.CodeSyntax},
		{"fault", "y + 1", "", frgerror.CodeUndefinedVariable},
		{"empty", "   ", "", frgerror.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Evaluate(ctx, EvaluateRequest{Source: tt.source, Origin: store.OriginGRPC})
			if tt.wantCode != "" {
				if !frgerror.HasCode(err, tt.wantCode) {
					t.Fatalf("error = %v, want %s", err, tt.wantCode)
				}
				if resp.ErrorCode != string(tt.wantCode) || resp.HasValue {
					t.Errorf("response = %+v", resp)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if resp.Value != tt.want || !resp.HasValue || resp.RunID == "" {
				t.Errorf("response = %+v, want value %s", resp, tt.want)
			}
		})
	}

	n, _ := runs.Count(ctx)
	if n != int64(len(tests)) {
		t.Errorf("recorded %d runs, want %d", n, len(tests))
	}
	failed, _ := runs.Query(ctx, store.RunFilter{OnlyFailed: true})
	if len(failed) != 3 {
		t.Errorf("failed runs = %d, want 3", len(failed))
	}
}

func TestService_FreshSessionPerRequest(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Evaluate(ctx, EvaluateRequest{Source: "let x = 4"}); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	_, err := svc.Evaluate(ctx, EvaluateRequest{Source: "x"})
	if !frgerror.HasCode(err, frgerror.CodeUndefinedVariable) {
		t.Errorf("binding leaked between requests: %v", err)
	}
}

func TestService_NamedSession(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Evaluate(ctx, EvaluateRequest{Source: "let x = 4", Session: "a"}); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	resp, err := svc.Evaluate(ctx, EvaluateRequest{Source: "x * x", Session: "a"})
	if err != nil || resp.Value != "16" || resp.Session != "a" {
		t.Fatalf("Evaluate(a) = %+v, %v", resp, err)
	}

	if !svc.EndSession("a") || svc.EndSession("a") {
		t.Error("EndSession() should report existence once")
	}
	if _, err := svc.Evaluate(ctx, EvaluateRequest{Source: "x", Session: "a"}); err == nil {
		t.Error("ended session kept its bindings")
	}
}

func TestService_SessionLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine = lang.Options{Logger: frglog.Discard()}
	cfg.MaxSessions = 1
	svc := NewService(cfg)
	defer svc.Close()

	ctx := context.Background()
	svc.Evaluate(ctx, EvaluateRequest{Source: "1", Session: "a"})
	_, err := svc.Evaluate(ctx, EvaluateRequest{Source: "1", Session: "b"})
	if !frgerror.HasCode(err, frgerror.CodeServiceUnavailable) {
		t.Errorf("error = %v, want SERVICE_UNAVAILABLE", err)
	}

	report := svc.Health(ctx)
	if report.Status != health.StatusDegraded {
		t.Errorf("Health() at the session limit = %s, want degraded", report.Status)
	}
	for _, c := range report.Checks {
		if c.Name == "sessions" && c.Message != "1/1" {
			t.Errorf("sessions check message = %q", c.Message)
		}
	}
}

func TestService_ParseCache(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, _ := svc.Evaluate(ctx, EvaluateRequest{Source: "2 + 2"})
	second, _ := svc.Evaluate(ctx, EvaluateRequest{Source: "2 + 2"})
	if first.Cached || !second.Cached {
		t.Errorf("Cached = %v, %v; want false, true", first.Cached, second.Cached)
	}
	if second.Value != "4" {
		t.Errorf("cached program evaluated to %s", second.Value)
	}

	stats := svc.Stats(ctx)
	if stats["programs_hits"] != int64(1) || stats["history_runs"] != int64(2) {
		t.Errorf("Stats() = %v", stats)
	}
}

func TestService_OutcomeCounters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, src := range []string{"1 + 1", "nope", "f(1)", "(1 +"} {
		svc.Evaluate(ctx, EvaluateRequest{Source: src})
	}

	stats := svc.Stats(ctx)
	if stats["runs"] != int64(4) || stats["faults"] != int64(2) || stats["syntax_errors"] != int64(1) {
		t.Errorf("Stats() = %v", stats)
	}
}

func TestService_EvaluateIn(t *testing.T) {
	svc, runs := newService(t)
	ctx := context.Background()
	eng := svc.NewSession()

	svc.EvaluateIn(ctx, eng, "func inc(n) { return n + 1; }", store.OriginREPL)
	resp, err := svc.EvaluateIn(ctx, eng, "inc(41)", store.OriginREPL)
	if err != nil || resp.Value != "42" {
		t.Fatalf("EvaluateIn() = %+v, %v", resp, err)
	}

	got, _ := runs.Query(ctx, store.RunFilter{Session: eng.Session()})
	if len(got) != 2 || got[0].Origin != store.OriginREPL {
		t.Errorf("recorded runs = %+v", got)
	}
}

func TestService_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine = lang.Options{Logger: frglog.Discard(), MaxCallDepth: 1000}
	cfg.EvalTimeout = time.Millisecond
	svc := NewService(cfg)
	defer svc.Close()

	// exponential call tree, far beyond the deadline
	src := "func f(n) { if (n) return f(n - 1) + f(n - 1); return 1; } f(40)"
	_, err := svc.Evaluate(context.Background(), EvaluateRequest{Source: src})
	if !frgerror.HasCode(err, frgerror.CodeTimeout) {
		t.Errorf("error = %v, want TIMEOUT", err)
	}
}

func TestService_Parse(t *testing.T) {
	svc, _ := newService(t)

	resp, err := svc.Parse(context.Background(), "let a = 1 + 2")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !strings.Contains(resp.Tree, "└── Let a") || len(resp.Nodes) != 1 || len(resp.Diagnostics) != 0 {
		t.Errorf("Parse() = %+v", resp)
	}
	if resp.Text == "" {
		t.Error("Text is empty")
	}

	resp, err = svc.Parse(context.Background(), "f(,1)")
	if err != nil || len(resp.Diagnostics) != 1 {
		t.Errorf("Parse(f(,1)) diagnostics = %v, %v", resp.Diagnostics, err)
	}
}

func TestService_Health(t *testing.T) {
	svc, _ := newService(t)
	report := svc.Health(context.Background())
	if report.Status != health.StatusHealthy || len(report.Checks) != 3 {
		t.Errorf("Health() = %+v", report)
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Lang.MaxCallDepth = 7
	cfg.Lang.EvalTimeout.Duration = time.Second

	c := ConfigFrom(cfg, frglog.Discard())
	if c.Engine.MaxCallDepth != 7 || c.EvalTimeout != time.Second || c.Cache.TTL != cfg.Server.CacheTTL.Duration {
		t.Errorf("ConfigFrom() = %+v", c)
	}
}
