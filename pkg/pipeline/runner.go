package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/cache"
	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/observability"
	"github.com/matzehuels/kemeny/pkg/profile"
)

const tracerName = "github.com/matzehuels/kemeny/pkg/pipeline"

// Runner executes methods with caching.
//
// The Runner keeps no per-run state, so one Runner may serve concurrent
// runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL for cached results; zero selects cache.DefaultTTL.
	TTL time.Duration
	// Retry governs cache reads and writes that fail transiently.
	Retry cache.RetryPolicy
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.DefaultTTL,
		Retry:  cache.DefaultRetry,
	}
}

// Run executes every method in opts against p.
func (r *Runner) Run(ctx context.Context, p *profile.Profile, opts Options) (*Report, error) {
	if p == nil || p.Candidates() == 0 {
		return nil, kerrors.New(kerrors.ErrCodeInvalidProfile, "profile has no candidates")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	methods, err := aggregate.LookupAll(opts.Methods, opts.Aggregate)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Runner.Run", trace.WithAttributes(
		attribute.StringSlice("methods", opts.Methods),
		attribute.Int("voters", p.Voters()),
		attribute.Int("candidates", p.Candidates()),
	))
	defer span.End()

	start := time.Now()
	report := &Report{
		RunID:       uuid.NewString(),
		ProfileHash: p.Hash(),
		Voters:      p.Voters(),
		Candidates:  p.Candidates(),
		Entries:     make([]Entry, len(methods)),
	}
	span.SetAttributes(attribute.String("run.id", report.RunID))

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, m := range methods {
		g.Go(func() error {
			report.Entries[i] = r.runMethod(ctx, p, m, report.ProfileHash, &opts)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, kerrors.Wrap(kerrors.ErrCodeTimeout, err, "run %s", report.RunID)
		}
		return nil, fmt.Errorf("run %s: %w", report.RunID, err)
	}

	if disagree := report.setOptimum(); len(disagree) > 0 {
		r.Logger.Error("exact methods disagree", "optimum", *report.Optimum, "methods", disagree)
	}
	report.Duration = time.Since(start)

	failed := len(report.Failed())
	span.SetAttributes(attribute.Int("failed", failed))
	span.SetStatus(codes.Ok, "")
	r.Logger.Info("aggregated profile",
		"run", report.RunID,
		"voters", report.Voters,
		"candidates", report.Candidates,
		"methods", len(report.Entries),
		"failed", failed,
		"duration", report.Duration)
	return report, nil
}

// Aggregate runs a single method and returns its result or error.
func (r *Runner) Aggregate(ctx context.Context, p *profile.Profile, method string, opts Options) (*aggregate.Result, error) {
	opts.Methods = []string{method}
	opts.validated = false
	report, err := r.Run(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	e := report.Entries[0]
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Result, nil
}

func (r *Runner) runMethod(ctx context.Context, p *profile.Profile, m aggregate.Method, hash string, opts *Options) Entry {
	name := m.Name()
	entry := Entry{Method: name}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "aggregate."+name,
		trace.WithAttributes(attribute.String("method", name)))
	defer span.End()

	var key string
	if opts.cacheable(name) {
		key = r.Keyer.ResultKey(hash, name, opts.ResultKeyOpts(name))
		if res, ok := r.load(ctx, key, name); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Int("score", res.Score))
			span.SetStatus(codes.Ok, "")
			r.Logger.Debug("cache hit", "method", name, "score", res.Score)
			entry.Result, entry.Cached = res, true
			return entry
		}
	}

	solveCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	hooks := observability.Solver()
	hooks.OnSolveStart(ctx, name, p.Voters(), p.Candidates())
	start := time.Now()
	res, err := m.Aggregate(solveCtx, p)
	elapsed := time.Since(start)
	score := -1
	if err == nil {
		score = res.Score
	}
	hooks.OnSolveComplete(ctx, name, score, elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.Logger.Debug("method failed", "method", name, "err", err, "duration", elapsed)
		entry.fail(err)
		return entry
	}

	span.SetAttributes(attribute.Int("score", res.Score), attribute.Bool("exact", res.Exact))
	span.SetStatus(codes.Ok, "")
	r.Logger.Debug("method finished", "method", name, "score", res.Score, "exact", res.Exact, "duration", elapsed)
	entry.Result = res
	if key != "" {
		r.store(ctx, key, name, res)
	}
	return entry
}

// load fetches a cached result. Corrupt or unreadable entries count as a
// miss.
func (r *Runner) load(ctx context.Context, key, method string) (*aggregate.Result, bool) {
	var data []byte
	var hit bool
	err := r.Retry.Do(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache read failed", "method", method, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, method)
		return nil, false
	}
	var res aggregate.Result
	if err := json.Unmarshal(data, &res); err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "method", method, "err", err)
		observability.Cache().OnCacheMiss(ctx, method)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, method)
	return &res, true
}

func (r *Runner) store(ctx context.Context, key, method string, res *aggregate.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}
	err = r.Retry.Do(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "method", method, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, method, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
