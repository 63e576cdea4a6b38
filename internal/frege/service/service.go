package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	frgerror "github.com/msto63/frege/foundation/core/error"
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/lang"
	"github.com/msto63/frege/foundation/lang/ast"
	"github.com/msto63/frege/foundation/lang/diagnostics"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/internal/printer"
	"github.com/msto63/frege/pkg/core/cache"
	"github.com/msto63/frege/pkg/core/config"
	"github.com/msto63/frege/pkg/core/health"
	"github.com/msto63/frege/pkg/core/logging"
	"github.com/msto63/frege/pkg/core/version"
)

// Config holds configuration for the evaluation service
type Config struct {
	Engine      lang.Options
	EvalTimeout time.Duration
	Cache       cache.ProgramsConfig
	MaxSessions int
	// Store receives every run; nil disables history
	Store store.RunStore
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		EvalTimeout: 5 * time.Second,
		Cache:       cache.DefaultProgramsConfig(),
		MaxSessions: 1000,
	}
}

// ConfigFrom derives the service configuration from the loaded config
func ConfigFrom(cfg *config.Config, logger *frglog.Logger) Config {
	c := DefaultConfig()
	c.Engine = lang.Options{
		Logger:             logger,
		MaxDepth:           cfg.Lang.MaxDepth,
		MaxCallDepth:       cfg.Lang.MaxCallDepth,
		MaxSourceBytes:     cfg.Lang.MaxSourceBytes,
		SeparateNamespaces: cfg.Lang.SeparateNamespaces,
		SkipCheck:          cfg.Lang.SkipCheck,
	}
	c.EvalTimeout = cfg.Lang.EvalTimeout.Duration
	if cfg.Server.CacheTTL.Duration > 0 {
		c.Cache.TTL = cfg.Server.CacheTTL.Duration
	}
	if cfg.Server.CacheCleanup.Duration > 0 {
		c.Cache.CleanupInterval = cfg.Server.CacheCleanup.Duration
	}
	return c
}

// EvaluateRequest asks for one unit to be evaluated
type EvaluateRequest struct {
	Source string
	// Session names a persistent session; empty evaluates in a fresh one
	Session string
	Origin  store.Origin
}

// EvaluateResponse describes the outcome of one unit
type EvaluateResponse struct {
	RunID       string                   `json:"run_id"`
	Session     string                   `json:"session,omitempty"`
	Value       string                   `json:"value"`
	HasValue    bool                     `json:"has_value"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
	Error       string                   `json:"error,omitempty"`
	ErrorCode   string                   `json:"error_code,omitempty"`
	Duration    time.Duration            `json:"duration_ns"`
	Cached      bool                     `json:"cached"`
}

// ParseResponse is the parse-only view of a unit
type ParseResponse struct {
	Tree        string                   `json:"tree"`
	Text        string                   `json:"text"`
	Nodes       []interface{}            `json:"nodes"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
	Cached      bool                     `json:"cached"`
}

// parsed is what the parse cache holds. Programs are never mutated after
// parsing and are shared between requests.
type parsed struct {
	program *ast.Program
	items   []diagnostics.Diagnostic
}

// Service evaluates units for the network surfaces and the CLI
type Service struct {
	engineOpts lang.Options
	timeout    time.Duration
	cache      *cache.ProgramCache[*parsed]
	store      store.RunStore
	health     *health.Registry
	logger     *logging.Logger

	mu          sync.Mutex
	sessions    map[string]*lang.Engine
	maxSessions int

	// outcome counters since start
	runs, faults, rejected atomic.Int64
}

// NewService creates a new evaluation service
func NewService(cfg Config) *Service {
	if cfg.Engine.Logger == nil {
		cfg.Engine.Logger = frglog.GetDefault()
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}

	s := &Service{
		engineOpts:  cfg.Engine,
		timeout:     cfg.EvalTimeout,
		cache:       cache.NewProgramCache[*parsed](cfg.Cache),
		store:       cfg.Store,
		logger:      logging.Wrap(cfg.Engine.Logger, "frege-service"),
		sessions:    make(map[string]*lang.Engine),
		maxSessions: cfg.MaxSessions,
	}

	s.health = health.NewRegistry("frege", version.Platform)
	s.health.Register(health.OutputCheck("engine", "2", func(ctx context.Context) (string, error) {
		res, err := s.NewSession().Run(ctx, "1 + 1")
		if err != nil {
			return "", err
		}
		return res.Value.String(), nil
	}))
	s.health.RegisterFunc("sessions", func(ctx context.Context) health.CheckResult {
		s.mu.Lock()
		n := len(s.sessions)
		s.mu.Unlock()

		result := health.CheckResult{Status: health.StatusHealthy, Message: fmt.Sprintf("%d/%d", n, s.maxSessions)}
		if n >= s.maxSessions {
			result.Status = health.StatusDegraded
		}
		return result
	})
	if s.store != nil {
		s.health.Register(health.ErrorCheck("history", func(ctx context.Context) error {
			_, err := s.store.Count(ctx)
			return err
		}))
	}

	return s
}

// NewSession creates a stateful engine for REPL and WebSocket use. The
// caller owns it; it is not reachable by name.
func (s *Service) NewSession() *lang.Engine {
	return lang.New(s.engineOpts)
}

// session returns the named session, creating it on first use
func (s *Service) session(name string) (*lang.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if eng, ok := s.sessions[name]; ok {
		return eng, nil
	}
	if len(s.sessions) >= s.maxSessions {
		return nil, frgerror.Newf("session limit of %d reached", s.maxSessions).
			WithCode(frgerror.CodeServiceUnavailable).
			WithDetail("session", name)
	}
	eng := lang.New(s.engineOpts)
	s.sessions[name] = eng
	s.logger.Debug("session created", "session", name, "engine_session", eng.Session())
	return eng, nil
}

// EndSession discards a named session and reports whether it existed
func (s *Service) EndSession(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[name]
	delete(s.sessions, name)
	return ok
}

// Evaluate evaluates one unit, in a fresh session unless req.Session names
// one. Evaluation faults are reported both in the response and as error.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	eng := s.NewSession()
	if req.Session != "" {
		var err error
		if eng, err = s.session(req.Session); err != nil {
			return nil, err
		}
	}

	resp, err := s.EvaluateIn(ctx, eng, req.Source, req.Origin)
	if resp != nil && req.Session != "" {
		resp.Session = req.Session
	}
	return resp, err
}

// EvaluateIn evaluates source in eng, going through the parse cache and
// recording the run
func (s *Service) EvaluateIn(ctx context.Context, eng *lang.Engine, source string, origin store.Origin) (*EvaluateResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		res    *lang.Result
		err    error
		cached bool
	)

	p, cached, perr := s.parse(eng, source)
	if perr != nil {
		res = &lang.Result{RunID: uuid.NewString(), Session: eng.Session(), Source: source, Err: perr}
		err = perr
	} else {
		diags := diagnostics.New()
		diags.Append(p.items...)
		res, err = eng.RunProgram(ctx, source, p.program, diags)
	}

	resp := responseFrom(res)
	resp.Cached = cached
	s.count(res.Err)
	s.record(ctx, res, origin)

	if err != nil {
		s.logger.Debug("evaluation failed", "run_id", resp.RunID, "code", resp.ErrorCode)
	}
	return resp, err
}

func (s *Service) count(err error) {
	s.runs.Add(1)
	switch {
	case err == nil:
	case frgerror.GetCode(err).IsEvaluationFault():
		s.faults.Add(1)
	case frgerror.HasCode(err, frgerror.CodeSyntax):
		s.rejected.Add(1)
	}
}

func (s *Service) parse(eng *lang.Engine, source string) (*parsed, bool, error) {
	return s.cache.GetOrParse(source, func() (*parsed, error) {
		prog, diags, err := eng.Parse(source)
		if err != nil {
			return nil, err
		}
		return &parsed{program: prog, items: diags.Items()}, nil
	})
}

func responseFrom(res *lang.Result) *EvaluateResponse {
	resp := &EvaluateResponse{
		RunID:       res.RunID,
		Value:       res.Value.String(),
		HasValue:    res.HasValue(),
		Diagnostics: res.Diagnostics,
		Duration:    res.Duration,
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []diagnostics.Diagnostic{}
	}
	if res.Err != nil {
		resp.Value = ""
		resp.Error = res.Err.Error()
		resp.ErrorCode = string(frgerror.GetCode(res.Err))
	}
	return resp
}

func (s *Service) record(ctx context.Context, res *lang.Result, origin store.Origin) {
	if s.store == nil || res == nil {
		return
	}

	run := &store.Run{
		ID:          res.RunID,
		Session:     res.Session,
		Source:      res.Source,
		Value:       res.Value.String(),
		HasValue:    res.HasValue(),
		Diagnostics: res.Diagnostics,
		DurationMs:  res.Duration.Milliseconds(),
		Origin:      origin,
	}
	if res.Err != nil {
		run.Value = ""
		run.Error = res.Err.Error()
		run.ErrorCode = string(frgerror.GetCode(res.Err))
	}

	// recording must not fail the evaluation, nor inherit its deadline
	if err := s.store.Record(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("failed to record run", "run_id", run.ID, "error", err)
	}
}

// Parse parses source without evaluating it
func (s *Service) Parse(ctx context.Context, source string) (*ParseResponse, error) {
	p, cached, err := s.parse(s.NewSession(), source)
	if err != nil {
		return nil, err
	}

	items := p.items
	if items == nil {
		items = []diagnostics.Diagnostic{}
	}
	return &ParseResponse{
		Tree:        printer.Sprint(p.program, printer.Options{Plain: true}),
		Text:        p.program.String(),
		Nodes:       ast.DumpProgram(p.program),
		Diagnostics: items,
		Cached:      cached,
	}, nil
}

// Health runs the registered health checks
func (s *Service) Health(ctx context.Context) *health.Report {
	return s.health.Check(ctx)
}

// Stats returns cache and session statistics
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	stats := s.cache.Stats()

	s.mu.Lock()
	stats["sessions"] = len(s.sessions)
	s.mu.Unlock()

	stats["runs"] = s.runs.Load()
	stats["faults"] = s.faults.Load()
	stats["syntax_errors"] = s.rejected.Load()

	if s.store != nil {
		if n, err := s.store.Count(ctx); err == nil {
			stats["history_runs"] = n
		}
	}
	return stats
}

// Store returns the history store, nil when disabled
func (s *Service) Store() store.RunStore {
	return s.store
}

// Close stops the cache sweep and closes the store
func (s *Service) Close() error {
	s.cache.Close()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
