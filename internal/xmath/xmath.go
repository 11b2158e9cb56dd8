// Package xmath provides the two generic numeric helpers the rest of
// this module needs, adapted from utils/comparison/comparison.go.
package xmath

import "golang.org/x/exp/constraints"

// Min returns the smaller of a and b.
func Min[V constraints.Ordered](a, b V) V {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max[V constraints.Ordered](a, b V) V {
	if a > b {
		return a
	}
	return b
}
