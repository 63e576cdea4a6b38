package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStatus_Constants(t *testing.T) {
	if StatusHealthy != "healthy" {
		t.Errorf("StatusHealthy = %v, want healthy", StatusHealthy)
	}
	if StatusUnhealthy != "unhealthy" {
		t.Errorf("StatusUnhealthy = %v, want unhealthy", StatusUnhealthy)
	}
	if StatusDegraded != "degraded" {
		t.Errorf("StatusDegraded = %v, want degraded", StatusDegraded)
	}
	if StatusUnknown != "unknown" {
		t.Errorf("StatusUnknown = %v, want unknown", StatusUnknown)
	}
}

func TestNewChecker(t *testing.T) {
	checker := NewChecker("test-checker", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "test passed",
		}
	})

	if checker.Name() != "test-checker" {
		t.Errorf("Name() = %v, want test-checker", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Message != "test passed" {
		t.Errorf("Message = %v, want 'test passed'", result.Message)
	}
}

func TestCheckFunc(t *testing.T) {
	fn := CheckFunc(func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	if fn.Name() != "unknown" {
		t.Errorf("Name() = %v, want unknown", fn.Name())
	}

	result := fn.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
}

func TestRegistry_RegisterAndCheck(t *testing.T) {
	registry := NewRegistry("frege", "0.1.0")

	checker1 := NewChecker("db", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "history reachable"}
	})
	checker2 := NewChecker("cache", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "parse cache ready"}
	})

	registry.Register(checker1)
	registry.Register(checker2)

	report := registry.Check(context.Background())

	if report.Service != "frege" {
		t.Errorf("Service = %v, want frege", report.Service)
	}
	if report.Version != "0.1.0" {
		t.Errorf("Version = %v, want 0.1.0", report.Version)
	}
	if report.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Errorf("Checks count = %v, want 2", len(report.Checks))
	}
}

func TestRegistry_RegisterFunc(t *testing.T) {
	registry := NewRegistry("frege", "0.1.0")

	registry.RegisterFunc("memory", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "Memory OK"}
	})

	report := registry.Check(context.Background())

	if len(report.Checks) != 1 {
		t.Errorf("Checks count = %v, want 1", len(report.Checks))
	}
	if report.Checks[0].Name != "memory" {
		t.Errorf("Check name = %v, want memory", report.Checks[0].Name)
	}
}

func TestRegistry_OverallStatus_Unhealthy(t *testing.T) {
	registry := NewRegistry("frege", "0.1.0")

	registry.RegisterFunc("healthy-check", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	registry.RegisterFunc("unhealthy-check", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy}
	})

	report := registry.Check(context.Background())

	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", report.Status)
	}
}

func TestRegistry_OverallStatus_Degraded(t *testing.T) {
	registry := NewRegistry("frege", "0.1.0")

	registry.RegisterFunc("healthy-check", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	registry.RegisterFunc("degraded-check", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusDegraded}
	})

	report := registry.Check(context.Background())

	if report.Status != StatusDegraded {
		t.Errorf("Status = %v, want degraded", report.Status)
	}
}

func TestRegistry_ConcurrentChecks(t *testing.T) {
	registry := NewRegistry("frege", "0.1.0")

	var counter int32

	for i := 0; i < 5; i++ {
		registry.RegisterFunc("check"+string(rune('A'+i)), func(ctx context.Context) CheckResult {
			atomic.AddInt32(&counter, 1)
			time.Sleep(10 * time.Millisecond) // Simulate work
			return CheckResult{Status: StatusHealthy}
		})
	}

	start := time.Now()
	report := registry.Check(context.Background())
	duration := time.Since(start)

	if atomic.LoadInt32(&counter) != 5 {
		t.Errorf("Counter = %v, want 5", counter)
	}

	// Checks should run concurrently, so total time should be close to 10ms, not 50ms
	if duration > 100*time.Millisecond {
		t.Errorf("Duration = %v, expected concurrent execution", duration)
	}

	if len(report.Checks) != 5 {
		t.Errorf("Checks count = %v, want 5", len(report.Checks))
	}
}

func TestRegistry_Uptime(t *testing.T) {
	registry := NewRegistry("frege", "0.1.0")

	time.Sleep(10 * time.Millisecond)

	report := registry.Check(context.Background())

	if report.Uptime < 10*time.Millisecond {
		t.Errorf("Uptime = %v, expected >= 10ms", report.Uptime)
	}
}

func TestReport_String(t *testing.T) {
	report := &Report{
		Service: "frege",
		Status:  StatusHealthy,
		Uptime:  1 * time.Hour,
		Checks:  []CheckResult{{}, {}},
	}

	str := report.String()

	if str == "" {
		t.Error("String() returned empty")
	}
	if len(str) < 10 {
		t.Errorf("String() too short: %v", str)
	}
}

func TestErrorCheck(t *testing.T) {
	ok := ErrorCheck("db", func(ctx context.Context) error { return nil })
	if r := ok.Check(context.Background()); r.Status != StatusHealthy || ok.Name() != "db" {
		t.Errorf("healthy check = %+v", r)
	}

	bad := ErrorCheck("db", func(ctx context.Context) error { return errors.New("locked") })
	if r := bad.Check(context.Background()); r.Status != StatusUnhealthy || r.Message != "locked" {
		t.Errorf("failing check = %+v", r)
	}
}

func TestOutputCheck(t *testing.T) {
	tests := []struct {
		name string
		got  string
		err  error
		want Status
	}{
		{"match", "2", nil, StatusHealthy},
		{"mismatch", "3", nil, StatusDegraded},
		{"error", "", errors.New("boom"), StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := OutputCheck("eval", "2", func(ctx context.Context) (string, error) { return tt.got, tt.err })
			if r := c.Check(context.Background()); r.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", r.Status, tt.want, r.Message)
			}
		})
	}
}
