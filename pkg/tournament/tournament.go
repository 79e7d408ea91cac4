package tournament

import (
	"errors"

	"github.com/matzehuels/kemeny/pkg/pairwise"
)

// ErrCycle is returned by TopoSort when the graph is not a DAG.
var ErrCycle = errors.New("tournament: graph contains a cycle")

// Edge is a directed edge with an optional weight (the majority margin for
// graphs built by FromMajority).
type Edge struct {
	From, To int
	Weight   int
}

// Digraph is a directed graph over the vertices 0..n-1. The zero value is
// an empty graph with no vertices; use New.
type Digraph struct {
	n      int
	adj    []bool
	weight []int
}

// New returns an edgeless graph with n vertices.
func New(n int) *Digraph {
	return &Digraph{n: n, adj: make([]bool, n*n), weight: make([]int, n*n)}
}

// FromMajority returns the majority tournament of s: an edge a->b weighted
// by the margin for every pair a strict majority decides. Tied pairs get no
// edge.
func FromMajority(s *pairwise.Stats) *Digraph {
	g := New(s.Candidates())
	for a := 0; a < g.n; a++ {
		for b := 0; b < g.n; b++ {
			if a != b && s.Majority(a, b) {
				g.AddWeightedEdge(a, b, s.Margin(a, b))
			}
		}
	}
	return g
}

// Len returns the number of vertices.
func (g *Digraph) Len() int { return g.n }

// AddEdge adds u->v. Self-loops are ignored.
func (g *Digraph) AddEdge(u, v int) { g.AddWeightedEdge(u, v, 0) }

// AddWeightedEdge adds u->v with weight w, replacing any previous weight.
func (g *Digraph) AddWeightedEdge(u, v, w int) {
	if u == v {
		return
	}
	g.adj[u*g.n+v] = true
	g.weight[u*g.n+v] = w
}

// RemoveEdge deletes u->v if present.
func (g *Digraph) RemoveEdge(u, v int) {
	g.adj[u*g.n+v] = false
	g.weight[u*g.n+v] = 0
}

// HasEdge reports whether u->v exists.
func (g *Digraph) HasEdge(u, v int) bool { return g.adj[u*g.n+v] }

// Weight returns the weight of u->v, or 0 when absent.
func (g *Digraph) Weight(u, v int) int { return g.weight[u*g.n+v] }

// Edges returns all edges ordered by (From, To).
func (g *Digraph) Edges() []Edge {
	var edges []Edge
	for u := 0; u < g.n; u++ {
		for v := 0; v < g.n; v++ {
			if g.adj[u*g.n+v] {
				edges = append(edges, Edge{From: u, To: v, Weight: g.weight[u*g.n+v]})
			}
		}
	}
	return edges
}

// Reaches reports whether a directed path leads from src to dst. A vertex
// always reaches itself.
func (g *Digraph) Reaches(src, dst int) bool {
	if src == dst {
		return true
	}
	visited := make([]bool, g.n)
	stack := []int{src}
	visited[src] = true
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for v := 0; v < g.n; v++ {
			if !g.adj[u*g.n+v] || visited[v] {
				continue
			}
			if v == dst {
				return true
			}
			visited[v] = true
			stack = append(stack, v)
		}
	}
	return false
}

// TryLock adds winner->loser with weight w unless that would close a cycle.
// It reports whether the edge was added.
func (g *Digraph) TryLock(winner, loser, w int) bool {
	if winner == loser || g.Reaches(loser, winner) {
		return false
	}
	g.AddWeightedEdge(winner, loser, w)
	return true
}

// IsAcyclic reports whether g has no directed cycle.
func (g *Digraph) IsAcyclic() bool {
	visited := make([]bool, g.n)
	onStack := make([]bool, g.n)
	next := make([]int, g.n) // next neighbour to scan per vertex

	for root := 0; root < g.n; root++ {
		if visited[root] {
			continue
		}
		stack := []int{root}
		visited[root], onStack[root] = true, true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			if next[u] == g.n {
				onStack[u] = false
				stack = stack[:len(stack)-1]
				continue
			}
			v := next[u]
			next[u]++
			if !g.adj[u*g.n+v] {
				continue
			}
			if onStack[v] {
				return false
			}
			if !visited[v] {
				visited[v], onStack[v] = true, true
				stack = append(stack, v)
			}
		}
	}
	return true
}

// TopoSort returns the vertices in topological order using Kahn's
// algorithm. Among ready vertices the smallest index goes first. It returns
// ErrCycle if some vertex keeps a positive in-degree.
func (g *Digraph) TopoSort() ([]int, error) {
	indeg := make([]int, g.n)
	for u := 0; u < g.n; u++ {
		for v := 0; v < g.n; v++ {
			if g.adj[u*g.n+v] {
				indeg[v]++
			}
		}
	}

	done := make([]bool, g.n)
	order := make([]int, 0, g.n)
	for len(order) < g.n {
		u := -1
		for c := 0; c < g.n; c++ {
			if !done[c] && indeg[c] == 0 {
				u = c
				break
			}
		}
		if u < 0 {
			return nil, ErrCycle
		}
		done[u] = true
		order = append(order, u)
		for v := 0; v < g.n; v++ {
			if g.adj[u*g.n+v] {
				indeg[v]--
			}
		}
	}
	return order, nil
}

// StrongestPaths returns the Schulze beatpath strengths for the pairwise
// support matrix d (d[i][j] = voters preferring i to j). The result p[i][j]
// is the strength of the strongest path from i to j, where a path is as
// strong as its weakest link. The diagonal is left at zero.
func StrongestPaths(d [][]int) [][]int {
	n := len(d)
	p := make([][]int, n)
	for i := range p {
		p[i] = make([]int, n)
		for j := range p[i] {
			if i != j {
				p[i][j] = d[i][j]
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			for k := 0; k < n; k++ {
				if i == k || j == k {
					continue
				}
				p[j][k] = max(p[j][k], min(p[j][i], p[i][k]))
			}
		}
	}
	return p
}
