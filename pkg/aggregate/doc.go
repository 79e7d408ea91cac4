// Package aggregate implements Kemeny-Young consensus ranking and the
// approximations commonly compared against it.
//
// Every method satisfies [Method]: it takes a validated profile and returns
// a [Result] holding a consensus order (a permutation of candidate indices,
// best first) and its Kemeny score, recomputed from the profile with
// [distance.Score] regardless of how the method arrived at the order.
//
// # Exact methods
//
//   - [BruteForce] enumerates all m! orders lexicographically.
//   - [SubsetDP] runs a dynamic program over the 2^m candidate subsets.
//   - [ILP] hands the ordering formulation to a [mip.Solver].
//   - [BranchBound] searches order prefixes, pruning with a pairwise lower
//     bound against a local-search incumbent.
//
// Exact methods refuse inputs above their candidate ceiling (see [Limits])
// with an error wrapping [ErrTooManyCandidates], and stop at coarse
// checkpoints when the context ends.
//
// # Approximations
//
// [Borda], [Copeland], [Footrule] and [MajoritySort] are single-pass
// scoring rules. [RankedPairs] and [Schulze] work on the majority graph.
// [LocalSearch] refines the Borda order with adjacent swaps, [KwikSort]
// partitions around random pivots and [Random] is the uniform baseline.
// [PickAPerm] returns the best voter's own ranking, within a factor two of
// the optimum.
//
// # Determinism
//
// Ties in every sort key break by ascending candidate index. Randomised
// methods draw from a caller-supplied *rand.Rand, so a fixed seed
// reproduces a run.
//
// # Registry
//
// [Lookup] builds a method by name from [Options]; [Names] lists them. The
// CLI and the HTTP API resolve user input through the registry.
package aggregate
