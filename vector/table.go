package vector

import (
	"vectorcore-go/errcode"
	"vectorcore-go/platform"
)

// Kind tags what a slot holds.
type Kind uint8

const (
	KindReserved  Kind = iota // reads back 0
	KindStackSeed             // initial main stack pointer
	KindHandler               // entry point
)

func (k Kind) String() string {
	switch k {
	case KindStackSeed:
		return "stack"
	case KindHandler:
		return "handler"
	}
	return "reserved"
}

// Slot is one table entry.
type Slot struct {
	Kind Kind
	Addr uint32
}

// Fixed supplies dedicated handlers for core exceptions (NMI, HardFault,
// SVCall, PendSV, SysTick, ...) that must not take the default entry.
type Fixed map[Index]uint32

// Table is a vector table. A table built by Build or read by Load is
// read-only; Relocate produces the only mutable kind.
type Table struct {
	layout Layout
	base   uint32
	placed bool
	slots  []Slot
	mem    platform.Memory // backing store, relocated tables only
}

// Build lays out a table: slot 0 seeds the stack, slot 1 is reset, the
// fixed subset gets its handlers, reserved slots are 0 and everything else
// (every peripheral line included) gets dflt. The result is unplaced.
func Build(l Layout, stackTop, reset, dflt uint32, fixed Fixed) (*Table, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	slots := make([]Slot, l.Len())
	slots[StackSeed] = Slot{Kind: KindStackSeed, Addr: stackTop}
	slots[Reset] = Slot{Kind: KindHandler, Addr: reset}
	for i := NMI; int(i) < len(slots); i++ {
		if l.Reserved(i) {
			slots[i] = Slot{Kind: KindReserved}
			continue
		}
		slots[i] = Slot{Kind: KindHandler, Addr: dflt}
	}
	for i, addr := range fixed {
		if i < NMI || int(i) >= l.Exceptions || l.Reserved(i) {
			return nil, errcode.New(errcode.InvalidIndex, "vector.Build", "fixed handler outside core exceptions")
		}
		slots[i].Addr = addr
	}
	return &Table{layout: l, slots: slots}, nil
}

// Load reads a table that already sits in memory at base, typically the
// flash image the linker placed (the current VTOR).
func Load(mem platform.Memory, base uint32, l Layout) (*Table, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := CheckAlignment(base, l); err != nil {
		return nil, err
	}
	slots := make([]Slot, l.Len())
	for i := range slots {
		idx := Index(i)
		switch {
		case idx == StackSeed:
			slots[i] = Slot{Kind: KindStackSeed, Addr: mem.Load32(base)}
		case l.Reserved(idx):
			slots[i] = Slot{Kind: KindReserved}
		default:
			slots[i] = Slot{Kind: KindHandler, Addr: mem.Load32(base + uint32(i)*WordSize)}
		}
	}
	return &Table{layout: l, base: base, placed: true, slots: slots}, nil
}

// Place fixes the base address of a built table. It may be called once.
func (t *Table) Place(base uint32) error {
	if t.placed {
		return errcode.New(errcode.AlreadyPlaced, "vector.Place", "")
	}
	if err := CheckAlignment(base, t.layout); err != nil {
		return err
	}
	t.base = base
	t.placed = true
	return nil
}

func (t *Table) Layout() Layout { return t.layout }
func (t *Table) Base() uint32   { return t.base }
func (t *Table) Placed() bool   { return t.placed }
func (t *Table) Len() int       { return len(t.slots) }

// Mutable reports whether this is a relocated, writable table.
func (t *Table) Mutable() bool { return t.mem != nil }

// Slot returns entry i. Relocated tables read through to memory.
func (t *Table) Slot(i Index) (Slot, bool) {
	if !t.layout.Valid(i) {
		return Slot{}, false
	}
	s := t.slots[i]
	if t.mem != nil && s.Kind != KindReserved {
		s.Addr = t.mem.Load32(t.base + uint32(i)*WordSize)
	}
	return s, true
}

// Words returns the table as the hardware sees it, one word per slot.
func (t *Table) Words() []uint32 {
	out := make([]uint32, len(t.slots))
	for i := range t.slots {
		s, _ := t.Slot(Index(i))
		out[i] = s.Addr
	}
	return out
}

// Replace overwrites slot i of a relocated table; last write wins. The stack
// seed and reserved slots cannot be replaced.
func (t *Table) Replace(i Index, addr uint32) error {
	if t.mem == nil {
		return errcode.New(errcode.NotRelocated, "vector.Replace", "table is in read-only memory")
	}
	if !t.layout.Valid(i) || i == StackSeed || t.layout.Reserved(i) {
		return errcode.New(errcode.InvalidIndex, "vector.Replace", "")
	}
	t.mem.Store32(t.base+uint32(i)*WordSize, addr)
	t.slots[i].Addr = addr
	return nil
}
