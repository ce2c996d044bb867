package core

import (
	"sync/atomic"

	"vectorcore-go/errcode"
	"vectorcore-go/platform"
	"vectorcore-go/vector"
)

// Context is the capability object for one core. It owns the relocated
// table exclusively once one exists.
type Context struct {
	cfg Config
	mem platform.Memory
	rom *vector.Table

	ram       *vector.Table
	relocated atomic.Bool // monotonic: never reverts once set
}

// New binds a core to its read-only table.
func New(cfg Config, rom *vector.Table, mem platform.Memory) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rom == nil || rom.Layout() != cfg.Layout {
		return nil, errcode.New(errcode.InvalidParams, "core.New", "table layout does not match config")
	}
	if mem == nil {
		mem = platform.Default()
	}
	return &Context{cfg: cfg, mem: mem, rom: rom}, nil
}

func (c *Context) ID() int                 { return c.cfg.ID }
func (c *Context) Config() Config          { return c.cfg }
func (c *Context) Layout() vector.Layout   { return c.cfg.Layout }
func (c *Context) Memory() platform.Memory { return c.mem }

// ExceptionCount is the number of architecture slots ahead of the first
// peripheral line.
func (c *Context) ExceptionCount() int { return c.cfg.Layout.Exceptions }

// ROM returns the read-only table the core booted with.
func (c *Context) ROM() *vector.Table { return c.rom }

// Relocated reports whether the core runs from a writable table.
func (c *Context) Relocated() bool { return c.relocated.Load() }

// Active returns the table the core dispatches from.
func (c *Context) Active() *vector.Table {
	if c.relocated.Load() {
		return c.ram
	}
	return c.rom
}

// Relocate copies the read-only table into dst. It succeeds at most once per
// core; later calls return errcode.AlreadyRelocated and leave the first copy
// and any handlers registered against it untouched.
func (c *Context) Relocate(dst vector.Region) (*vector.Table, error) {
	if c.relocated.Load() {
		return nil, errcode.New(errcode.AlreadyRelocated, "core.Relocate", "")
	}
	ram, err := vector.Relocate(c.rom, dst, c.mem)
	if err != nil {
		return nil, err
	}
	c.ram = ram
	c.relocated.Store(true)
	return ram, nil
}

// Line translates an abstract index into the vendor controller's number.
// Indices below ExceptionCount are core exceptions and never map to a line.
func (c *Context) Line(i vector.Index) (uint32, error) {
	n := c.cfg.Layout.Exceptions
	if int(i) < n || !c.cfg.Layout.Valid(i) {
		return 0, errcode.New(errcode.InvalidIndex, "core.Line", "not a peripheral interrupt")
	}
	return uint32(int(i) - n), nil
}

// Index is the inverse of Line.
func (c *Context) Index(line uint32) (vector.Index, error) {
	if int(line) >= c.cfg.Layout.Peripherals {
		return 0, errcode.New(errcode.InvalidIndex, "core.Index", "line beyond peripheral count")
	}
	return vector.Index(int(line) + c.cfg.Layout.Exceptions), nil
}
