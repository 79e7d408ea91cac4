// Package perm provides permutation utilities for exhaustive search.
package perm

// Seq returns a slice containing the sequence [0, 1, 2, ..., n-1].
// This is useful for initializing permutation arrays or creating index sequences.
//
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	if n <= 0 {
		return []int{}
	}
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

// Factorial returns n! (n factorial), the product 1 × 2 × ... × n.
// For n <= 1, Factorial returns 1.
//
// This function is useful for calculating the size of the full permutation space.
// Note that factorials grow extremely fast: 13! = 6,227,020,800 exceeds 32-bit int.
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Next rearranges p into the lexicographically next permutation and reports
// whether one existed. When p is already the last permutation (descending),
// Next leaves it unchanged and returns false.
//
// Starting from Seq(n) and calling Next until it returns false visits all n!
// permutations in lexicographic order, which gives exhaustive searches a
// documented, reproducible tie-break: the first optimum seen is the
// lexicographically smallest one.
func Next(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}

// Each calls fn with every permutation of [0, n) in lexicographic order.
// The slice passed to fn is reused between calls; clone it to keep it.
// Iteration stops early when fn returns false.
//
// For n = 0, fn is called once with an empty slice.
func Each(n int, fn func(p []int) bool) {
	p := Seq(n)
	for {
		if !fn(p) {
			return
		}
		if !Next(p) {
			return
		}
	}
}
