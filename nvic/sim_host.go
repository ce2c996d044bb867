//go:build !(tinygo && cortexm)

package nvic

import "vectorcore-go/platform"

// Simulate gives the NVIC banks of s their hardware store semantics: a one
// written to ISER/ISPR sets, a one written to ICER/ICPR clears, and both
// addresses of a pair read back the same state.
func Simulate(s *platform.Sim) {
	for b := uint32(0); b < Banks; b++ {
		pair(s, Base+iser+4*b, Base+icer+4*b)
		pair(s, Base+ispr+4*b, Base+icpr+4*b)
	}
}

func pair(s *platform.Sim, set, clr uint32) {
	s.OnStore(set, func(w map[uint32]uint32, v uint32) {
		w[set] |= v
		w[clr] = w[set]
	})
	s.OnStore(clr, func(w map[uint32]uint32, v uint32) {
		w[set] &^= v
		w[clr] = w[set]
	})
}
