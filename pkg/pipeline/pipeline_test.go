package pipeline

import (
	"context"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/cache"
	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/observability"
	"github.com/matzehuels/kemeny/pkg/profile"
	"github.com/matzehuels/kemeny/pkg/profile/generate"
)

var tiny = profile.MustNew([][]int{
	{0, 1, 2, 3, 4},
	{0, 1, 3, 2, 4},
	{4, 1, 2, 0, 3},
	{4, 1, 0, 2, 3},
	{4, 1, 3, 2, 0},
})

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(opts.Methods, DefaultMethods) {
		t.Errorf("Methods = %v, want %v", opts.Methods, DefaultMethods)
	}
	if opts.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", opts.Concurrency, DefaultConcurrency)
	}

	opts = Options{Methods: []string{"DP", "subset-dp", "tideman", "dp"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	want := []string{aggregate.NameSubsetDP, aggregate.NameRankedPairs}
	if !slices.Equal(opts.Methods, want) {
		t.Errorf("Methods = %v, want %v", opts.Methods, want)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unknown method", Options{Methods: []string{"borda", "nope"}}},
		{"negative concurrency", Options{Concurrency: -1}},
		{"negative timeout", Options{Timeout: -time.Second}},
		{"negative restarts", Options{Aggregate: aggregate.Options{Restarts: -1}}},
		{"negative limit", Options{Aggregate: aggregate.Options{Limits: &aggregate.Limits{SubsetDP: -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !kerrors.Is(err, kerrors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestResultKeyOpts(t *testing.T) {
	opts := Options{Aggregate: aggregate.Options{Seed: 7, Restarts: 3, MaxNoImprove: 9}}
	if got := opts.ResultKeyOpts(aggregate.NameBorda); got != (cache.ResultKeyOpts{}) {
		t.Errorf("borda key opts = %+v, want zero", got)
	}
	if got := opts.ResultKeyOpts(aggregate.NameKwikSort); got != (cache.ResultKeyOpts{Seed: 7}) {
		t.Errorf("kwiksort key opts = %+v", got)
	}
	want := cache.ResultKeyOpts{Seed: 7, Restarts: 3, MaxNoImprove: 9}
	if got := opts.ResultKeyOpts(aggregate.NameLocalSearch); got != want {
		t.Errorf("localsearch key opts = %+v, want %+v", got, want)
	}
}

func TestRun(t *testing.T) {
	r := quietRunner(nil)
	report, err := r.Run(context.Background(), tiny, Options{
		Methods: []string{"dp", "bruteforce", "borda", "schulze"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.RunID == "" || report.ProfileHash != tiny.Hash() {
		t.Errorf("report header = %q %q", report.RunID, report.ProfileHash)
	}
	if report.Voters != 5 || report.Candidates != 5 {
		t.Errorf("shape = %dx%d", report.Voters, report.Candidates)
	}
	if len(report.Entries) != 4 || report.Entries[2].Method != aggregate.NameBorda {
		t.Fatalf("entries out of order: %+v", report.Entries)
	}
	if report.Optimum == nil || *report.Optimum != 15 {
		t.Fatalf("Optimum = %v, want 15", report.Optimum)
	}
	if got := report.Result("borda").Score; got != 16 {
		t.Errorf("borda score = %d, want 16", got)
	}
	if got := report.Entries[2].Gap(report.Optimum); got != 1 {
		t.Errorf("borda gap = %d, want 1", got)
	}
	best := report.Best()
	if best == nil || best.Method != aggregate.NameSubsetDP {
		t.Errorf("Best = %+v, want the first optimal entry", best)
	}
	if len(report.Failed()) != 0 {
		t.Errorf("Failed = %+v", report.Failed())
	}
}

func TestRunRecordsMethodErrors(t *testing.T) {
	p, err := generate.Uniform(generate.NewRand(1), 6, 12)
	if err != nil {
		t.Fatal(err)
	}
	report, err := quietRunner(nil).Run(context.Background(), p, Options{
		Methods: []string{"bruteforce", "borda"},
	})
	if err != nil {
		t.Fatal(err)
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Method != aggregate.NameBruteForce {
		t.Fatalf("Failed = %+v", failed)
	}
	if failed[0].Code != kerrors.ErrCodeLimitExceeded {
		t.Errorf("Code = %s, want LIMIT_EXCEEDED", failed[0].Code)
	}
	if report.Optimum != nil {
		t.Errorf("Optimum = %d, want none", *report.Optimum)
	}
	if report.Best() == nil {
		t.Error("Best should fall back to the heuristic")
	}
}

func TestRunUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(c)
	defer r.Close()

	opts := Options{Methods: []string{"dp", "kwiksort"}, Aggregate: aggregate.Options{Seed: 3}}
	first, err := r.Run(context.Background(), tiny, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Run(context.Background(), tiny, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range second.Entries {
		if !e.Cached {
			t.Errorf("%s not served from cache", e.Method)
		}
		if !slices.Equal(e.Result.Order, first.Entries[i].Result.Order) {
			t.Errorf("%s cached order %v != %v", e.Method, e.Result.Order, first.Entries[i].Result.Order)
		}
	}

	opts.NoCache = true
	third, err := r.Run(context.Background(), tiny, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range third.Entries {
		if e.Cached {
			t.Errorf("%s served from cache with NoCache", e.Method)
		}
	}
}

// flakyCache fails the first reads and writes with a transient error.
type flakyCache struct {
	cache.Cache

	mu       sync.Mutex
	getFails int
	setFails int
	getCalls int
	setCalls int
}

func (f *flakyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	f.getCalls++
	fail := f.getCalls <= f.getFails
	f.mu.Unlock()
	if fail {
		return nil, false, cache.Retryable(io.ErrUnexpectedEOF)
	}
	return f.Cache.Get(ctx, key)
}

func (f *flakyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	f.setCalls++
	fail := f.setCalls <= f.setFails
	f.mu.Unlock()
	if fail {
		return cache.Retryable(io.ErrUnexpectedEOF)
	}
	return f.Cache.Set(ctx, key, value, ttl)
}

func TestRunRetriesTransientCacheErrors(t *testing.T) {
	inner, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name       string
		fails      int
		wantCached bool
	}{
		{"recovers within policy", 1, true},
		{"gives up and runs uncached", 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := inner.(cache.Clearer).Clear(context.Background()); err != nil {
				t.Fatal(err)
			}
			fc := &flakyCache{Cache: inner, setFails: tt.fails}
			r := quietRunner(fc)
			r.Retry = cache.RetryPolicy{Attempts: 2, BaseDelay: time.Millisecond}
			opts := Options{Methods: []string{"borda"}}

			if _, err := r.Run(context.Background(), tiny, opts); err != nil {
				t.Fatal(err)
			}
			fc.mu.Lock()
			fc.getFails = fc.getCalls + tt.fails
			fc.mu.Unlock()
			report, err := r.Run(context.Background(), tiny, opts)
			if err != nil {
				t.Fatal(err)
			}
			if e := report.Entries[0]; e.Err != nil || e.Cached != tt.wantCached {
				t.Errorf("entry cached=%v err=%v, want cached=%v", e.Cached, e.Err, tt.wantCached)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Aggregate(context.Background(), tiny, "brute", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Exact || res.Score != 15 {
		t.Errorf("result = %+v", res)
	}

	p, _ := generate.Identical(2, 11)
	_, err = r.Aggregate(context.Background(), p, "bruteforce", Options{})
	if !kerrors.Is(err, kerrors.ErrCodeLimitExceeded) {
		t.Errorf("err = %v, want LIMIT_EXCEEDED", err)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := quietRunner(nil).Run(ctx, tiny, Options{Methods: []string{"borda"}}); err == nil {
		t.Error("expected an error for a canceled context")
	}
}

func TestRunNilProfile(t *testing.T) {
	_, err := quietRunner(nil).Run(context.Background(), nil, Options{})
	if !kerrors.Is(err, kerrors.ErrCodeInvalidProfile) {
		t.Errorf("err = %v, want INVALID_PROFILE", err)
	}
}

type countingHooks struct {
	observability.NoopSolverHooks
	mu        sync.Mutex
	started   []string
	completed int
}

func (h *countingHooks) OnSolveStart(_ context.Context, method string, _, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, method)
}

func (h *countingHooks) OnSolveComplete(context.Context, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed++
}

func TestRunCallsSolverHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetSolverHooks(hooks)
	defer observability.Reset()

	_, err := quietRunner(nil).Run(context.Background(), tiny, Options{
		Methods: []string{"borda", "copeland", "schulze"},
	})
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(hooks.started)
	want := []string{aggregate.NameBorda, aggregate.NameCopeland, aggregate.NameSchulze}
	if !slices.Equal(hooks.started, want) || hooks.completed != 3 {
		t.Errorf("started %v, completed %d", hooks.started, hooks.completed)
	}
}
