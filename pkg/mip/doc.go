// Package mip defines a small mixed-integer programming oracle contract and
// a SAT-backed implementation for pure 0-1 models.
//
// A [Model] holds binary variables, a linear objective to minimise and
// linear constraints. Any [Solver] can be plugged in behind it; callers only
// see a [Solution] carrying a [Status] and one value per variable.
//
// # SAT backend
//
// [SATSolver] handles models whose coefficients and right-hand sides are
// integers. Each constraint is normalised to non-negative weights (a term
// -a·x becomes a·¬x with the bound shifted by a), expanded into a multiset
// of literals and bounded with a sorting-network cardinality constraint from
// [github.com/go-air/gini/logic]. Constraints that reduce to one clause,
// such as "not all of these" or "at least one of these", skip the network.
// The objective is encoded the same way; optimisation binary-searches
// between the smallest expressible objective and the incumbent, and the
// final UNSAT answer proves optimality. [Model.SetStart] supplies a first
// incumbent and [Model.SetObjectiveOffset] a constant term.
//
// Weighted literals are replicated, so network size grows with the sum of
// absolute coefficients. Formulations should keep that sum small, for
// example by folding complementary variables into one term and an offset.
package mip
