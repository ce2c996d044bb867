// Package nvic is the vendor controller primitive: enable, disable and
// pending control keyed by controller line number (not abstract index).
package nvic

import "vectorcore-go/platform"

// Register bank offsets from Base; each bank is 16 words, one bit per line.
const (
	Base = 0xE000E100

	iser = 0x000
	icer = 0x080
	ispr = 0x100
	icpr = 0x180

	// Banks is the number of 32-line words per register bank.
	Banks = 16
)

func word(bank, line uint32) uint32 { return Base + bank + 4*(line>>5) }
func bit(line uint32) uint32        { return 1 << (line & 0x1F) }

// Controller drives the NVIC through memory. Stores to the set/clear banks
// are write-one-to-act, so no read-modify-write is needed.
type Controller struct {
	mem platform.Memory
}

func New(mem platform.Memory) *Controller {
	if mem == nil {
		mem = platform.Default()
	}
	return &Controller{mem: mem}
}

func (c *Controller) Enable(line uint32)       { c.mem.Store32(word(iser, line), bit(line)) }
func (c *Controller) Disable(line uint32)      { c.mem.Store32(word(icer, line), bit(line)) }
func (c *Controller) SetPending(line uint32)   { c.mem.Store32(word(ispr, line), bit(line)) }
func (c *Controller) ClearPending(line uint32) { c.mem.Store32(word(icpr, line), bit(line)) }

// Enabled reads the line's enable state.
func (c *Controller) Enabled(line uint32) bool {
	return c.mem.Load32(word(iser, line))&bit(line) != 0
}

// Pending reads the line's pending state.
func (c *Controller) Pending(line uint32) bool {
	return c.mem.Load32(word(ispr, line))&bit(line) != 0
}

// EnableMask returns the raw enable word covering lines 32*bank..32*bank+31.
func (c *Controller) EnableMask(bank uint32) uint32 {
	return c.mem.Load32(Base + iser + 4*bank)
}
