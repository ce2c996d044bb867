//go:build tinygo && cortexm

package platform

import (
	"device/arm"
	"runtime/volatile"
	"unsafe"
)

// MMIO is Memory backed by the bus itself.
type MMIO struct{}

func (MMIO) Load32(addr uint32) uint32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(addr))).Get()
}

func (MMIO) Store32(addr uint32, v uint32) {
	(*volatile.Register32)(unsafe.Pointer(uintptr(addr))).Set(v)
}

// Default returns the memory every package uses when none is injected.
func Default() Memory { return MMIO{} }

func halt() {
	arm.DisableInterrupts()
	for {
		arm.Asm("wfi")
	}
}

// DisableInterrupts sets PRIMASK and returns its previous value.
func DisableInterrupts() IRQState { return IRQState(arm.DisableInterrupts()) }

// RestoreInterrupts writes back a PRIMASK value saved by DisableInterrupts.
func RestoreInterrupts(s IRQState) { arm.EnableInterrupts(uintptr(s)) }

// Barrier completes outstanding memory accesses and flushes the pipeline,
// required after moving VTOR or releasing another core.
func Barrier() {
	arm.Asm("dsb 0xF")
	arm.Asm("isb 0xF")
}

// Sev signals an event to cores parked in wfe.
func Sev() { arm.Asm("sev") }
