// Package platform is the register-access and CPU-control layer beneath the
// vector, boot, dispatch and multicore packages. MCU builds (TinyGo,
// Cortex-M) talk to real memory-mapped registers; every other build gets a
// simulator so the same logic can be exercised on a host.
package platform

// Memory is word-granular access to the physical address space.
type Memory interface {
	Load32(addr uint32) uint32
	Store32(addr uint32, v uint32)
}

// SetBits performs a read-modify-write OR on the word at addr.
func SetBits(m Memory, addr, mask uint32) {
	m.Store32(addr, m.Load32(addr)|mask)
}

// ClearBits performs a read-modify-write AND NOT on the word at addr.
func ClearBits(m Memory, addr, mask uint32) {
	m.Store32(addr, m.Load32(addr)&^mask)
}

// IRQState is the saved global interrupt mask (PRIMASK) returned by
// DisableInterrupts and consumed by RestoreInterrupts.
type IRQState uint32

// Private peripheral bus: SCS, NVIC and SysTick are banked per core.
const (
	PPBBase = 0xE0000000
	PPBEnd  = 0xE0100000
)

// Banked is one core's view of the address space: its own private
// peripheral bus over memory shared with the other cores.
type Banked struct {
	Shared  Memory
	Private Memory
}

func (b Banked) route(addr uint32) Memory {
	if addr >= PPBBase && addr < PPBEnd {
		return b.Private
	}
	return b.Shared
}

func (b Banked) Load32(addr uint32) uint32     { return b.route(addr).Load32(addr) }
func (b Banked) Store32(addr uint32, v uint32) { b.route(addr).Store32(addr, v) }
