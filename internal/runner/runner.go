// Package runner compiles and evaluates expressions on behalf of a host
// program, with caching, logging, and instrumentation.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/zephyrtronium/bindexpr"
	"github.com/zephyrtronium/bindexpr/internal/cache"
	"github.com/zephyrtronium/bindexpr/internal/observability"
)

// Runner compiles expressions through a cache and evaluates them with the
// built-in functions bound. It is safe for concurrent use.
type Runner struct {
	logger    *slog.Logger
	cache     *cache.Cache
	obs       *observability.Config
	prec      uint
	nonfinite bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.SetLogger(logger)
	}
}

// WithCacheCapacity sets the number of compiled expressions to keep. A
// capacity of zero or less disables the cache.
func WithCacheCapacity(n int) Option {
	return func(r *Runner) {
		if n <= 0 {
			r.cache = nil
			return
		}
		r.cache = cache.New(n)
	}
}

// WithObservability sets the tracing and metrics configuration.
func WithObservability(cfg *observability.Config) Option {
	return func(r *Runner) {
		r.obs = cfg
	}
}

// WithPrec sets the precision in bits of compiled expressions.
func WithPrec(bits uint) Option {
	return func(r *Runner) {
		r.prec = bits
	}
}

// WithNonFinite makes division by zero produce infinities instead of errors.
func WithNonFinite() Option {
	return func(r *Runner) {
		r.nonfinite = true
	}
}

// New creates a Runner. By default it logs to slog.Default(), caches
// cache.DefaultCapacity expressions, and uses no-op instrumentation.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.Default(),
		cache:  cache.New(cache.DefaultCapacity),
		prec:   bindexpr.DefaultPrec,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.obs == nil {
		r.obs = observability.NewConfig()
	}
	if r.prec == 0 {
		r.prec = bindexpr.DefaultPrec
	}
	return r
}

// SetLogger sets the logger. If logger is nil, slog.Default() is used.
func (r *Runner) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	r.logger = logger
}

// Prec returns the precision in bits of compiled expressions.
func (r *Runner) Prec() uint {
	return r.prec
}

func (r *Runner) parseOptions() []bindexpr.ParseOption {
	opts := []bindexpr.ParseOption{bindexpr.Prec(r.prec)}
	if r.nonfinite {
		opts = append(opts, bindexpr.AllowNonFinite())
	}
	return opts
}

func (r *Runner) compile(src string) (*bindexpr.Expr, error) {
	return bindexpr.Compile(src, r.parseOptions()...)
}

// Compile compiles src, or returns a fresh copy of a cached compilation. The
// caller owns the result and may bind it freely.
func (r *Runner) Compile(ctx context.Context, src string) (*bindexpr.Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := r.obs.Tracer()
	ctx, span := tracer.StartCompile(ctx, src, r.prec)
	defer span.End()
	logger := observability.LoggerWithTrace(ctx, r.logger)

	var (
		e   *bindexpr.Expr
		hit bool
		err error
	)
	if r.cache != nil {
		e, hit, err = r.cache.GetOrCompile(src, r.compile)
	} else {
		e, err = r.compile(src)
	}
	if err != nil {
		tracer.RecordError(span, err)
		r.obs.Metrics().RecordError(ctx, observability.OpCompile, errorType(err))
		logger.DebugContext(ctx, "compile failed", "src", src, "error", err)
		return nil, fmt.Errorf("compiling %q: %w", src, err)
	}
	vars, funcs := e.Vars(), e.Funcs()
	span.SetAttributes(
		observability.CacheHitAttr(hit),
		observability.VarCountAttr(len(vars)),
		observability.FuncCountAttr(len(funcs)),
	)
	r.obs.Metrics().RecordCompile(ctx, hit)
	logger.DebugContext(ctx, "compiled expression", "src", src, "cache_hit", hit, "vars", vars)
	return e, nil
}

// Eval compiles src, binds the built-in functions and each given variable that
// the expression uses, and evaluates it. Given variables the expression does
// not use are ignored.
func (r *Runner) Eval(ctx context.Context, src string, given map[string]*big.Float) (*big.Float, error) {
	e, err := r.Compile(ctx, src)
	if err != nil {
		return nil, err
	}
	return r.eval(ctx, src, e, given)
}

// EvalExpr is like Eval for an expression that is already compiled. The
// built-ins and given variables remain bound to e afterward.
func (r *Runner) EvalExpr(ctx context.Context, e *bindexpr.Expr, given map[string]*big.Float) (*big.Float, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.eval(ctx, e.String(), e, given)
}

func (r *Runner) eval(ctx context.Context, src string, e *bindexpr.Expr, given map[string]*big.Float) (*big.Float, error) {
	tracer := r.obs.Tracer()
	ctx, span := tracer.StartEvaluate(ctx, src)
	defer span.End()
	logger := observability.LoggerWithTrace(ctx, r.logger)

	e.BindDefaults()
	for name, val := range given {
		if err := e.BindVariable(name, val); err != nil {
			var uv *bindexpr.UndefinedVariableError
			if errors.As(err, &uv) {
				continue
			}
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
	}

	timed := r.obs.IsEnabled()
	var start time.Time
	if timed {
		start = time.Now()
	}
	v, err := e.Evaluate()
	if timed {
		r.obs.Metrics().RecordEvaluate(ctx, time.Since(start))
	}
	if err != nil {
		tracer.RecordError(span, err)
		r.obs.Metrics().RecordError(ctx, observability.OpEvaluate, errorType(err))
		logger.DebugContext(ctx, "evaluation failed", "src", src, "error", err)
		return nil, fmt.Errorf("evaluating %q: %w", src, err)
	}
	logger.DebugContext(ctx, "evaluated expression", "src", src, "result", v.String())
	return v, nil
}

// errorType names the innermost error type for metrics.
func errorType(err error) string {
	for {
		u := errors.Unwrap(err)
		if u == nil {
			return fmt.Sprintf("%T", err)
		}
		err = u
	}
}
