package multicore

import "vectorcore-go/platform"

// RP2040/RP2350 single-cycle IO inter-core FIFO and power-on state machine.
const (
	SIOFIFOStatus = 0xD0000050
	SIOFIFOWrite  = 0xD0000054
	SIOFIFORead   = 0xD0000058

	fifoValid = 1 << 0 // VLD: receive FIFO not empty
	fifoReady = 1 << 1 // RDY: transmit FIFO not full

	PSMForceOff = 0x40010004
	psmProc1    = 1 << 16
)

// DefaultSpins bounds each wait on the FIFO status register.
const DefaultSpins = 1 << 16

// SIOMailbox is the SIO FIFO pair driven through registers.
type SIOMailbox struct {
	mem   platform.Memory
	spins int
}

func NewSIOMailbox(mem platform.Memory, spins int) *SIOMailbox {
	if mem == nil {
		mem = platform.Default()
	}
	if spins <= 0 {
		spins = DefaultSpins
	}
	return &SIOMailbox{mem: mem, spins: spins}
}

func (m *SIOMailbox) Drain() {
	for n := 0; n < m.spins && m.mem.Load32(SIOFIFOStatus)&fifoValid != 0; n++ {
		_ = m.mem.Load32(SIOFIFORead)
	}
}

func (m *SIOMailbox) Push(v uint32) bool {
	if !m.wait(fifoReady) {
		return false
	}
	m.mem.Store32(SIOFIFOWrite, v)
	platform.Sev()
	return true
}

func (m *SIOMailbox) Pop() (uint32, bool) {
	if !m.wait(fifoValid) {
		return 0, false
	}
	return m.mem.Load32(SIOFIFORead), true
}

func (m *SIOMailbox) wait(bit uint32) bool {
	for n := 0; n < m.spins; n++ {
		if m.mem.Load32(SIOFIFOStatus)&bit != 0 {
			return true
		}
	}
	return false
}

// ResetCore1 pulses core 1 through the power-on state machine so it
// re-enters the boot ROM and waits for a launch sequence.
func ResetCore1(mem platform.Memory) func() {
	return func() {
		platform.SetBits(mem, PSMForceOff, psmProc1)
		for n := 0; n < DefaultSpins; n++ {
			if mem.Load32(PSMForceOff)&psmProc1 != 0 {
				break
			}
		}
		platform.ClearBits(mem, PSMForceOff, psmProc1)
	}
}
