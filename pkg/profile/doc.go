// Package profile defines the ranking matrix consumed by every aggregation
// method.
//
// A [Profile] holds n voters and m candidates. Entry (v, c) is the rank
// position voter v assigns to candidate c, with 0 meaning best. Every row
// must be a permutation of 0..m-1: strict, complete orders only.
//
// Profiles are immutable once constructed. Constructors copy their input and
// validate it, so solvers may share one Profile across goroutines without
// locking.
//
// # Construction
//
//	p, err := profile.New([][]int{
//	    {0, 1, 2},
//	    {1, 0, 2},
//	})
//
// Inputs that use one-based positions (as some solver front-ends do) are
// normalised with [FromOneBased]. Voter orders (best-to-worst candidate
// lists) are converted with [FromOrders].
//
// # Files
//
// [Read] understands three formats:
//
//   - soc: PrefLib "strict orders, complete lists" files, with multiplicity
//     lines like "13: 1,4,3,2" expanded into one row per voter
//   - json: {"labels": [...], "ranks": [[...], ...]}
//   - yaml: the same document in YAML
package profile
