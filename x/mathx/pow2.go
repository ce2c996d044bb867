package mathx

import "golang.org/x/exp/constraints"

// IsPow2 reports whether v is a non-zero power of two.
func IsPow2[T constraints.Unsigned](v T) bool {
	return v != 0 && v&(v-1) == 0
}

// NextPow2 returns the smallest power of two >= v. NextPow2(0) is 1.
// Wraps to 0 when the result does not fit in T.
func NextPow2[T constraints.Unsigned](v T) T {
	p := T(1)
	for p != 0 && p < v {
		p <<= 1
	}
	return p
}

// IsAligned reports whether v is a multiple of align (a power of two).
func IsAligned[T constraints.Unsigned](v, align T) bool {
	return align != 0 && v&(align-1) == 0
}
