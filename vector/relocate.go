package vector

import (
	"vectorcore-go/errcode"
	"vectorcore-go/platform"
	"vectorcore-go/x/mathx"
)

// Region is a writable memory window offered by the memory map.
type Region struct {
	Base uint32
	Size uint32
}

// Empty reports a region the target does not provide.
func (r Region) Empty() bool { return r.Size == 0 }

// Relocate copies every slot of src verbatim into dst and returns the
// writable table living there. It does not guard against repeated calls;
// that is the owning core's job.
//
// An empty region yields errcode.NoRegion. A region smaller than the table
// or a base not aligned to it yields RegionTooSmall or Misaligned.
func Relocate(src *Table, dst Region, mem platform.Memory) (*Table, error) {
	const op = "vector.Relocate"
	if dst.Empty() {
		return nil, errcode.New(errcode.NoRegion, op, "")
	}
	l := src.Layout()
	if dst.Size < l.ByteLen() {
		return nil, errcode.New(errcode.RegionTooSmall, op, "region smaller than table")
	}
	if !mathx.IsAligned(dst.Base, l.Alignment()) {
		return nil, errcode.New(errcode.Misaligned, op, "region base not aligned to table size")
	}
	slots := make([]Slot, src.Len())
	for i := range slots {
		s, _ := src.Slot(Index(i))
		mem.Store32(dst.Base+uint32(i)*WordSize, s.Addr)
		slots[i] = s
	}
	return &Table{layout: l, base: dst.Base, placed: true, slots: slots, mem: mem}, nil
}
