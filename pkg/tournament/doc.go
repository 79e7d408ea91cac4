// Package tournament provides a small dense directed graph over candidate
// indices and the graph algorithms the consensus methods need.
//
// # Overview
//
// A [Digraph] stores edges in an n×n adjacency matrix. Candidate counts in
// rank aggregation are small (tens, rarely hundreds) while the algorithms
// touch every pair, so the dense layout is both the simplest and the
// fastest representation.
//
// # Algorithms
//
//   - [Digraph.TryLock] adds an edge only if it keeps the graph acyclic, the
//     primitive behind Ranked Pairs.
//   - [Digraph.IsAcyclic] runs an iterative depth-first search with
//     visited and on-stack markers.
//   - [Digraph.TopoSort] is Kahn's algorithm, always emitting the smallest
//     ready index first so the result is deterministic.
//   - [StrongestPaths] computes Schulze beatpath strengths with a
//     Floyd–Warshall max-min relaxation.
//
// # Rendering
//
// [Digraph.ToDOT] emits Graphviz DOT; [RenderSVG] renders it in-process
// using [github.com/goccy/go-graphviz].
package tournament
