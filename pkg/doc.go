// Package pkg provides the core libraries for kemeny rank aggregation.
//
// # Overview
//
// kemeny turns many voters' rankings of the same candidates into a single
// consensus order. The Kemeny-Young consensus minimises the total number of
// pairwise disagreements with the voters; finding it is NP-hard, so the
// libraries offer both exact solvers and fast approximations.
//
// # Architecture
//
// The typical data flow:
//
//	PrefLib .soc / JSON / YAML / generator
//	         ↓
//	    [profile] (validated rank matrix)
//	         ↓
//	    [pairwise] (wins, costs, majority relation)
//	         ↓
//	    [aggregate] methods (exact, heuristic, graph, local search)
//	         ↓
//	    [distance] (Kemeny score of the result)
//
// [pipeline] wraps the methods with caching, concurrency limits, tracing and
// logging for the CLI and the HTTP API.
//
// # Quick Start
//
//	p, _ := profile.ReadFile("votes.soc", "")
//	m, _ := aggregate.Lookup("dp", aggregate.Options{})
//	res, _ := m.Aggregate(ctx, p)
//	fmt.Println(res.Order, res.Score)
//
// # Main Packages
//
// ## Domain
//
// [profile] - The n x m rank matrix, its validation and readers/writers.
// [profile/generate] builds synthetic profiles (uniform, Mallows, cycles).
//
// [pairwise] - Pairwise win and cost matrices and the majority tournament.
//
// [distance] - Kendall tau distance and the Kemeny score.
//
// [perm] - Permutation utilities used by brute force and tests.
//
// [tournament] - Fixed-size digraph with cycle-safe edge locking,
// topological sort, strongest paths and Graphviz rendering.
//
// [mip] - A small 0-1 integer program model and a SAT-backed solver for it.
//
// [aggregate] - Every aggregation method and the name registry.
//
// ## Infrastructure
//
// [pipeline] - Runs methods concurrently with caching and observability.
//
// [cache] - Result cache with file, Redis and null backends.
//
// [observability] - Hook registry for metrics and tracing backends.
//
// [errors] - Structured error codes shared by the CLI and the API.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/aggregate/... # Specific package
//	go test -run Example ./...  # Examples only
package pkg
