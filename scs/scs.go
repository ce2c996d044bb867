// Package scs programs the parts of the System Control Space the boot
// sequence touches: VTOR, CPACR, SHCSR and the SysTick timer.
package scs

import (
	"vectorcore-go/errcode"
	"vectorcore-go/platform"
)

const (
	VTOR  = 0xE000ED08
	SHCSR = 0xE000ED24
	CPACR = 0xE000ED88

	SysTickCSR = 0xE000E010
	SysTickRVR = 0xE000E014
	SysTickCVR = 0xE000E018
)

const (
	shcsrMemFaultEna = 1 << 16
	shcsrBusFaultEna = 1 << 17
	shcsrUsgFaultEna = 1 << 18

	// CP10 and CP11 full access.
	cpacrFPU = 0xF << 20

	csrEnable    = 1 << 0
	csrTickInt   = 1 << 1
	csrClkSource = 1 << 2

	// MaxReload is the 24-bit SysTick reload limit.
	MaxReload = 0x00FFFFFF
)

// SetVTOR points the core at the table based at base and waits for the
// write to take effect.
func SetVTOR(m platform.Memory, base uint32) {
	m.Store32(VTOR, base)
	platform.Barrier()
}

// GetVTOR returns the current table base.
func GetVTOR(m platform.Memory) uint32 { return m.Load32(VTOR) }

// GrantFPU enables coprocessor access for the floating-point unit.
func GrantFPU(m platform.Memory) {
	platform.SetBits(m, CPACR, cpacrFPU)
	platform.Barrier()
}

// FPUGranted reports whether CP10/CP11 are fully accessible.
func FPUGranted(m platform.Memory) bool { return m.Load32(CPACR)&cpacrFPU == cpacrFPU }

// EnableFaultIsolation routes MemManage, BusFault and UsageFault to their
// own handlers instead of escalating to HardFault.
func EnableFaultIsolation(m platform.Memory) {
	platform.SetBits(m, SHCSR, shcsrMemFaultEna|shcsrBusFaultEna|shcsrUsgFaultEna)
}

// FaultIsolation reports whether all three fault handlers are enabled.
func FaultIsolation(m platform.Memory) bool {
	const all = shcsrMemFaultEna | shcsrBusFaultEna | shcsrUsgFaultEna
	return m.Load32(SHCSR)&all == all
}

// ArmSysTick starts the periodic timer from the processor clock with its
// interrupt enabled.
func ArmSysTick(m platform.Memory, reload uint32) error {
	if reload == 0 || reload > MaxReload {
		return errcode.New(errcode.UnsupportedClock, "scs.ArmSysTick", "reload outside 24-bit range")
	}
	m.Store32(SysTickCSR, 0)
	m.Store32(SysTickRVR, reload)
	m.Store32(SysTickCVR, 0) // any write clears the counter
	m.Store32(SysTickCSR, csrClkSource|csrTickInt|csrEnable)
	return nil
}

// SysTickArmed reports whether the timer and its interrupt are enabled.
func SysTickArmed(m platform.Memory) bool {
	return m.Load32(SysTickCSR)&(csrEnable|csrTickInt) == csrEnable|csrTickInt
}
