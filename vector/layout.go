// Package vector models the Cortex-M exception/interrupt vector table: the
// read-only image the linker places at the reset address, and the single
// writable copy a core may relocate into RAM.
package vector

import (
	"vectorcore-go/errcode"
	"vectorcore-go/x/conv"
	"vectorcore-go/x/mathx"
)

// Index is the zero-based position in the combined table: core exceptions
// first, then peripheral interrupts.
type Index int

// Architecture-defined exception numbers.
const (
	StackSeed    Index = 0
	Reset        Index = 1
	NMI          Index = 2
	HardFault    Index = 3
	MemManage    Index = 4
	BusFault     Index = 5
	UsageFault   Index = 6
	SecureFault  Index = 7
	SVCall       Index = 11
	DebugMonitor Index = 12
	PendSV       Index = 14
	SysTick      Index = 15
)

const (
	// WordSize is the width of one slot in bytes.
	WordSize = 4
	// MinAlign is the smallest VTOR alignment; TBLOFF starts at bit 7.
	MinAlign = 128
	// MaxEntries bounds the table: 16 exceptions plus 496 external lines.
	MaxEntries = 512
)

// Arch selects the architecture profile, which decides the reserved slots.
type Arch uint8

const (
	ARMv6M Arch = iota // Cortex-M0/M0+/M1
	ARMv7M             // Cortex-M3/M4/M7
	ARMv8M             // Cortex-M23/M33/M55 mainline
)

func (a Arch) String() string {
	switch a {
	case ARMv6M:
		return "v6m"
	case ARMv7M:
		return "v7m"
	case ARMv8M:
		return "v8m"
	}
	return "unknown"
}

// ParseArch accepts the short names used in chip profiles.
func ParseArch(s string) (Arch, bool) {
	switch s {
	case "v6m", "armv6m", "m0", "m0+":
		return ARMv6M, true
	case "v7m", "armv7m", "m3", "m4", "m7":
		return ARMv7M, true
	case "v8m", "armv8m", "m33", "m55":
		return ARMv8M, true
	}
	return 0, false
}

// Reserved reports whether core exception slot i is unused on this profile.
func (a Arch) Reserved(i Index) bool {
	switch i {
	case 8, 9, 10, 13:
		return true
	case SecureFault:
		return a != ARMv8M
	case MemManage, BusFault, UsageFault, DebugMonitor:
		return a == ARMv6M
	}
	return false
}

// FaultIsolation reports whether the profile has separately enableable
// MemManage/BusFault/UsageFault handlers.
func (a Arch) FaultIsolation() bool { return a != ARMv6M }

// Layout is the per-chip shape of a table.
type Layout struct {
	Arch        Arch
	Exceptions  int // core_exception_count
	Peripherals int // peripheral_interrupt_count
}

func (l Layout) Len() int { return l.Exceptions + l.Peripherals }

// ByteLen is the table size in bytes.
func (l Layout) ByteLen() uint32 { return uint32(l.Len()) * WordSize }

// Alignment is the required base alignment: the next power of two at or
// above ByteLen, never below MinAlign.
func (l Layout) Alignment() uint32 {
	return mathx.Max(mathx.NextPow2(l.ByteLen()), MinAlign)
}

// Reserved reports whether slot i is architecturally unused.
func (l Layout) Reserved(i Index) bool {
	return int(i) < l.Exceptions && i < 16 && l.Arch.Reserved(i)
}

// Valid reports whether i addresses a slot of the table.
func (l Layout) Valid(i Index) bool { return i >= 0 && int(i) < l.Len() }

func (l Layout) Validate() error {
	if l.Exceptions < 2 || l.Peripherals < 0 || l.Len() > MaxEntries {
		return errcode.New(errcode.InvalidParams, "vector.Layout", "bad exception/peripheral counts")
	}
	return nil
}

// CheckAlignment reports errcode.Misaligned when base does not satisfy the
// layout's alignment. At boot this is fatal.
func CheckAlignment(base uint32, l Layout) error {
	if !mathx.IsAligned(base, l.Alignment()) {
		return errcode.New(errcode.Misaligned, "vector.CheckAlignment", "base not aligned to table size")
	}
	return nil
}

var exceptionNames = [16]string{
	StackSeed:    "sp",
	Reset:        "reset",
	NMI:          "nmi",
	HardFault:    "hardfault",
	MemManage:    "memmanage",
	BusFault:     "busfault",
	UsageFault:   "usagefault",
	SecureFault:  "securefault",
	SVCall:       "svcall",
	DebugMonitor: "debugmon",
	PendSV:       "pendsv",
	SysTick:      "systick",
}

// Name labels slot i for dumps: the exception name, "reserved", or
// "irq<n>" with the vendor line number.
func (l Layout) Name(i Index) string {
	switch {
	case !l.Valid(i):
		return "invalid"
	case l.Reserved(i):
		return "reserved"
	case int(i) < l.Exceptions && i < 16:
		return exceptionNames[i]
	case int(i) < l.Exceptions:
		return "exc" + conv.Int(int(i))
	}
	return "irq" + conv.Int(int(i)-l.Exceptions)
}
