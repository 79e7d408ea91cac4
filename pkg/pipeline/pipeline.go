// Package pipeline runs aggregation methods over a profile.
//
// The CLI and the HTTP API both go through a Runner so that validation,
// caching, concurrency limits, tracing and logging behave the same way on
// every entry point.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	report, err := runner.Run(ctx, p, pipeline.Options{
//	    Methods: []string{"dp", "borda", "schulze"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	best := report.Best()
//
// A method that fails (for example an exact solver above its candidate
// ceiling) does not fail the run; the error is recorded on its Entry. Run
// itself only fails on invalid input or when ctx ends.
package pipeline

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/cache"
	kerrors "github.com/matzehuels/kemeny/pkg/errors"
)

// DefaultConcurrency bounds how many methods run at once.
const DefaultConcurrency = 4

// DefaultMethods is what a run executes when no methods are named: one
// exact solver for the optimum plus the fast heuristics.
var DefaultMethods = []string{
	aggregate.NameSubsetDP,
	aggregate.NameBorda,
	aggregate.NameCopeland,
	aggregate.NameRankedPairs,
	aggregate.NameSchulze,
	aggregate.NameLocalSearch,
}

// Options configures a run.
type Options struct {
	// Methods to execute, by name or alias. Duplicates are dropped.
	Methods []string `json:"methods,omitempty" validate:"omitempty,dive,method"`
	// Aggregate is passed to aggregate.Lookup for every method.
	Aggregate aggregate.Options `json:"aggregate"`
	// Concurrency bounds parallel methods; zero selects DefaultConcurrency.
	Concurrency int `json:"concurrency,omitempty" validate:"min=0,max=256"`
	// Timeout bounds each method separately; zero means no bound.
	Timeout time.Duration `json:"timeout,omitempty" validate:"min=0"`
	// NoCache bypasses the result cache for reads and writes.
	NoCache bool `json:"no_cache,omitempty"`

	validated bool
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("method", func(fl validator.FieldLevel) bool {
			_, ok := aggregate.Canonical(fl.Field().String())
			return ok
		})
	})
	return validate
}

// Validate checks o against its struct tags.
func (o *Options) Validate() error {
	if err := validatorInstance().Struct(o); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "invalid options")
	}
	return nil
}

// ValidateAndSetDefaults validates o, fills in defaults and canonicalises
// method names. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Validate(); err != nil {
		return err
	}
	if len(o.Methods) == 0 {
		o.Methods = DefaultMethods
	}
	seen := make(map[string]bool, len(o.Methods))
	methods := make([]string, 0, len(o.Methods))
	for _, name := range o.Methods {
		canonical, _ := aggregate.Canonical(name)
		if !seen[canonical] {
			seen[canonical] = true
			methods = append(methods, canonical)
		}
	}
	o.Methods = methods
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	o.validated = true
	return nil
}

// ResultKeyOpts returns the options that make up method's cache key.
// Deterministic methods ignore the seed so their entries are shared across
// seeds.
func (o *Options) ResultKeyOpts(method string) cache.ResultKeyOpts {
	if !aggregate.Randomized(method) {
		return cache.ResultKeyOpts{}
	}
	opts := cache.ResultKeyOpts{Seed: o.Aggregate.Seed}
	if method == aggregate.NameLocalSearch {
		opts.Restarts = o.Aggregate.Restarts
		opts.MaxNoImprove = o.Aggregate.MaxNoImprove
	}
	return opts
}

// cacheable reports whether method results may be cached. Plackett-Luce
// depends on an opaque fitter, and a custom ILP solver may differ from the
// default one.
func (o *Options) cacheable(method string) bool {
	if o.NoCache {
		return false
	}
	switch method {
	case aggregate.NamePlackettLuce:
		return false
	case aggregate.NameILP:
		return o.Aggregate.Solver == nil
	}
	return true
}
