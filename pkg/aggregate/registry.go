package aggregate

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/mip"
)

// Method names.
const (
	NameBruteForce   = "bruteforce"
	NameSubsetDP     = "dp"
	NameILP          = "ilp"
	NameBranchBound  = "bnb"
	NameBorda        = "borda"
	NameCopeland     = "copeland"
	NameFootrule     = "footrule"
	NameMajoritySort = "majority"
	NameRankedPairs  = "rankedpairs"
	NameSchulze      = "schulze"
	NamePickAPerm    = "pickaperm"
	NameLocalSearch  = "localsearch"
	NameKwikSort     = "kwiksort"
	NameRandom       = "random"
	NamePlackettLuce = "plackettluce"
)

var (
	exactNames = []string{NameBruteForce, NameSubsetDP, NameILP, NameBranchBound}
	allNames   = []string{
		NameBruteForce, NameSubsetDP, NameILP, NameBranchBound,
		NameBorda, NameCopeland, NameFootrule, NameMajoritySort,
		NameRankedPairs, NameSchulze, NamePickAPerm,
		NameLocalSearch, NameKwikSort, NameRandom,
	}
	descriptions = map[string]string{
		NameBruteForce:   "exact: enumerate all m! orders",
		NameSubsetDP:     "exact: dynamic program over candidate subsets",
		NameILP:          "exact: 0-1 program solved by the MIP oracle",
		NameBranchBound:  "exact: prefix search pruned by pairwise lower bounds",
		NameBorda:        "ascending sum of rank positions",
		NameCopeland:     "descending count of majority wins",
		NameFootrule:     "Spearman footrule (same order as Borda)",
		NameMajoritySort: "bubble sort with the majority comparator",
		NameRankedPairs:  "Tideman: lock strongest pairs, skip cycles",
		NameSchulze:      "beatpath: strongest paths via Floyd-Warshall",
		NamePickAPerm:    "best single voter ranking (2-approximation)",
		NameLocalSearch:  "Borda seed refined by adjacent swaps, restarted",
		NameKwikSort:     "random-pivot partitioning on the majority tournament",
		NameRandom:       "uniform random order (baseline)",
		NamePlackettLuce: "strength ordering from a Plackett-Luce fitter",
	}
)

// Options configures the methods built by Lookup.
type Options struct {
	// Seed feeds every randomised method. Each method gets its own source
	// derived from Seed and its name.
	Seed uint64 `json:"seed"`
	// Restarts and MaxNoImprove tune LocalSearch; zero selects the defaults.
	Restarts     int `json:"restarts" validate:"min=0"`
	MaxNoImprove int `json:"max_no_improve" validate:"min=0"`
	// Workers bounds LocalSearch parallelism; zero means unbounded.
	Workers int `json:"workers" validate:"min=0"`
	// Limits are the exact-method ceilings; nil selects DefaultLimits. A
	// non-nil Limits is used as is, so &Limits{} lifts every ceiling.
	Limits *Limits `json:"limits,omitempty"`
	// Solver backs the ILP method; nil selects mip.NewSATSolver.
	Solver mip.Solver `json:"-"`
	// Fitter enables the plackettluce method.
	Fitter Fitter `json:"-"`
}

func (o Options) limits() Limits {
	if o.Limits == nil {
		return DefaultLimits
	}
	return *o.Limits
}

// Rand returns the source Lookup hands to the named method.
func (o Options) Rand(name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewPCG(o.Seed, h.Sum64()))
}

// Names returns every built-in method name in presentation order.
// plackettluce is omitted because it needs a Fitter.
func Names() []string {
	return append([]string(nil), allNames...)
}

// ExactNames returns the names of the exact methods.
func ExactNames() []string {
	return append([]string(nil), exactNames...)
}

// Exact reports whether the named method returns proven optima.
func Exact(name string) bool {
	for _, n := range exactNames {
		if n == name {
			return true
		}
	}
	return false
}

// Describe returns a one-line description of the named method.
func Describe(name string) string {
	return descriptions[name]
}

// Canonical resolves case and aliases to a registered method name. ok is
// false for unknown names.
func Canonical(name string) (canonical string, ok bool) {
	canonical = normalize(name)
	_, ok = descriptions[canonical]
	return canonical, ok
}

// Randomized reports whether the named method draws from Options.Seed.
func Randomized(name string) bool {
	switch normalize(name) {
	case NameLocalSearch, NameKwikSort, NameRandom:
		return true
	}
	return false
}

// Lookup builds the named method. Names are case-insensitive and accept a
// few common aliases.
func Lookup(name string, opts Options) (Method, error) {
	limits := opts.limits()
	switch normalize(name) {
	case NameBruteForce:
		return BruteForce{Limit: limits.BruteForce}, nil
	case NameSubsetDP:
		return SubsetDP{Limit: limits.SubsetDP}, nil
	case NameILP:
		return ILP{Solver: opts.Solver, Limit: limits.ILP}, nil
	case NameBranchBound:
		return BranchBound{Limit: limits.BranchBound}, nil
	case NameBorda:
		return Borda{}, nil
	case NameCopeland:
		return Copeland{}, nil
	case NameFootrule:
		return Footrule{}, nil
	case NameMajoritySort:
		return MajoritySort{}, nil
	case NameRankedPairs:
		return RankedPairs{}, nil
	case NameSchulze:
		return Schulze{}, nil
	case NamePickAPerm:
		return PickAPerm{}, nil
	case NameLocalSearch:
		ls := NewLocalSearch(opts.Rand(NameLocalSearch))
		if opts.Restarts > 0 {
			ls.Restarts = opts.Restarts
		}
		if opts.MaxNoImprove > 0 {
			ls.MaxNoImprove = opts.MaxNoImprove
		}
		ls.Workers = opts.Workers
		return ls, nil
	case NameKwikSort:
		return NewKwikSort(opts.Rand(NameKwikSort)), nil
	case NameRandom:
		return NewRandom(opts.Rand(NameRandom)), nil
	case NamePlackettLuce:
		if opts.Fitter == nil {
			return nil, kerrors.New(kerrors.ErrCodeUnsupported, "%s requires a fitter", NamePlackettLuce)
		}
		return PlackettLuce{Fitter: opts.Fitter}, nil
	}
	return nil, kerrors.New(kerrors.ErrCodeInvalidMethod, "unknown method %q (available: %s)", name, strings.Join(allNames, ", "))
}

// LookupAll resolves several names, failing on the first unknown one.
func LookupAll(names []string, opts Options) ([]Method, error) {
	methods := make([]Method, 0, len(names))
	for _, name := range names {
		m, err := Lookup(name, opts)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

var aliases = map[string]string{
	"brute":        NameBruteForce,
	"brute-force":  NameBruteForce,
	"subset-dp":    NameSubsetDP,
	"majoritysort": NameMajoritySort,
	"ranked-pairs": NameRankedPairs,
	"tideman":      NameRankedPairs,
	"beatpath":     NameSchulze,
	"local-search": NameLocalSearch,
	"2opt":         NameLocalSearch,
	"plackett":     NamePlackettLuce,
	"branch-bound": NameBranchBound,
	"pick-a-perm":  NamePickAPerm,
	"bestvoter":    NamePickAPerm,
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}
