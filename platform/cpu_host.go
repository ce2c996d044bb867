//go:build !(tinygo && cortexm)

package platform

import "sync/atomic"

var (
	hostMem = NewSim()
	primask atomic.Uint32
	events  atomic.Uint32
)

// Default returns the process-wide simulator.
func Default() Memory { return hostMem }

func halt() {
	// Models the trap: nothing runs on this core again.
	select {}
}

// DisableInterrupts masks the simulated core and returns the previous mask.
func DisableInterrupts() IRQState { return IRQState(primask.Swap(1)) }

// RestoreInterrupts writes back a mask saved by DisableInterrupts.
func RestoreInterrupts(s IRQState) { primask.Store(uint32(s)) }

// Masked reports whether the simulated core has interrupts masked.
func Masked() bool { return primask.Load() != 0 }

func Barrier() {}

// Sev counts the event instead of waking another core.
func Sev() { events.Add(1) }

// Events returns how many times Sev has been called.
func Events() uint32 { return events.Load() }
