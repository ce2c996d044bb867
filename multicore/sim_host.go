//go:build !(tinygo && cortexm)

package multicore

import "vectorcore-go/platform"

// SimulateROM makes the SIO FIFO registers of s behave like a secondary
// core parked in the boot ROM: every word pushed is echoed back, reads pop,
// and the transmit side never fills.
func SimulateROM(s *platform.Sim) {
	var rx []uint32
	s.OnStore(SIOFIFOWrite, func(_ map[uint32]uint32, v uint32) {
		rx = append(rx, v)
	})
	s.OnLoad(SIOFIFOStatus, func(map[uint32]uint32) uint32 {
		st := uint32(fifoReady)
		if len(rx) > 0 {
			st |= fifoValid
		}
		return st
	})
	s.OnLoad(SIOFIFORead, func(map[uint32]uint32) uint32 {
		if len(rx) == 0 {
			return 0
		}
		v := rx[0]
		rx = rx[1:]
		return v
	})
}
