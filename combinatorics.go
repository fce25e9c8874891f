package gowick

import "sort"

// ============================================================
// Combinatorics
// ============================================================

func factorial(n int) int64 {
	f := int64(1)
	for i := 2; i <= n; i++ {
		f *= int64(i)
	}
	return f
}

// binomial returns n choose k, and 0 when k is out of range.
func binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	b := int64(1)
	for i := 1; i <= k; i++ {
		b = b * int64(n-k+i) / int64(i)
	}
	return b
}

// permutationSign returns the parity of perm as +1 or -1 by counting
// inversions.
func permutationSign(perm []int) int {
	inv := 0
	for i := 0; i < len(perm); i++ {
		for j := i + 1; j < len(perm); j++ {
			if perm[i] > perm[j] {
				inv++
			}
		}
	}
	if inv%2 == 0 {
		return 1
	}
	return -1
}

// integerPartitions lists the partitions of n into at most maxParts positive
// parts, each in non-increasing order.
func integerPartitions(n, maxParts int) [][]int {
	var out [][]int
	var rec func(rem, maxPart int, cur []int)
	rec = func(rem, maxPart int, cur []int) {
		if rem == 0 {
			out = append(out, append([]int(nil), cur...))
			return
		}
		if len(cur) == maxParts {
			return
		}
		for p := min(rem, maxPart); p >= 1; p-- {
			rec(rem-p, p, append(cur, p))
		}
	}
	if n > 0 && maxParts > 0 {
		rec(n, n, nil)
	}
	return out
}

// nextPermutation rearranges a into the lexicographically next permutation
// and reports false once a has wrapped back to sorted order.
func nextPermutation(a []int) bool {
	i := len(a) - 2
	for i >= 0 && a[i] >= a[i+1] {
		i--
	}
	if i < 0 {
		sort.Ints(a)
		return false
	}
	j := len(a) - 1
	for a[j] <= a[i] {
		j--
	}
	a[i], a[j] = a[j], a[i]
	for l, r := i+1, len(a)-1; l < r; l, r = l+1, r-1 {
		a[l], a[r] = a[r], a[l]
	}
	return true
}

// distinctArrangements returns every distinct ordering of parts padded with
// zeros to length n.
func distinctArrangements(parts []int, n int) [][]int {
	p := make([]int, n)
	copy(p, parts)
	sort.Ints(p)
	var out [][]int
	for {
		out = append(out, append([]int(nil), p...))
		if !nextPermutation(p) {
			break
		}
	}
	return out
}

func identityPerm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}
