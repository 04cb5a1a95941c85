package util

import (
	"math/rand"
	"sort"

	"golang.org/x/exp/constraints"
)

// GetKeys returns the map keys in ascending order.
func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func Min[A constraints.Ordered](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Ordered](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Clamp[A constraints.Ordered](v, lo, hi A) A {
	return Max(lo, Min(v, hi))
}

// Choose picks a uniformly random element. xs must not be empty.
func Choose[A any](r *rand.Rand, xs []A) A {
	return xs[r.Intn(len(xs))]
}

// OrDefault returns xs unless it is empty.
func OrDefault[A any](xs []A, fallback []A) []A {
	if len(xs) == 0 {
		return fallback
	}
	return xs
}
