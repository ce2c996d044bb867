// Package multicore releases secondary cores from reset with their own
// vector table, independently of the primary core's boot sequence.
package multicore

import (
	"vectorcore-go/bus"
	"vectorcore-go/core"
	"vectorcore-go/errcode"
	"vectorcore-go/platform"
	"vectorcore-go/types"
	"vectorcore-go/vector"
	"vectorcore-go/x/conv"
	"vectorcore-go/x/logx"
)

// Starter brings up one secondary core whose vector table sits at vtor.
// The returned context runs from that table.
type Starter interface {
	StartSecondary(id int, vtor uint32) (*core.Context, error)
	Started(id int) bool
}

// roster is the bookkeeping shared by every launcher: which cores exist,
// which one is running this code, and which were already released.
type roster struct {
	mem     platform.Memory
	primary int
	cores   []core.Config
	conn    *bus.Connection

	started map[int]bool
	debug   map[int]bool
}

func newRoster(mem platform.Memory, primary int, cores []core.Config, conn *bus.Connection) roster {
	if mem == nil {
		mem = platform.Default()
	}
	return roster{
		mem:     mem,
		primary: primary,
		cores:   cores,
		conn:    conn,
		started: map[int]bool{},
		debug:   map[int]bool{},
	}
}

func (r *roster) config(op string, id int) (core.Config, error) {
	for _, c := range r.cores {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Config{}, errcode.New(errcode.UnknownCore, op, "core "+conv.Int(id))
}

// prepare validates a launch request and reads back the table at vtor.
func (r *roster) prepare(op string, id int, vtor uint32) (core.Config, *vector.Table, error) {
	if id == r.primary {
		return core.Config{}, nil, errcode.New(errcode.InvalidParams, op, "core "+conv.Int(id)+" is the primary")
	}
	cfg, err := r.config(op, id)
	if err != nil {
		return cfg, nil, err
	}
	if r.started[id] {
		return cfg, nil, errcode.New(errcode.AlreadyStarted, op, "core "+conv.Int(id))
	}
	tbl, err := vector.Load(r.mem, vtor, cfg.Layout)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, tbl, nil
}

func (r *roster) finish(cfg core.Config, tbl *vector.Table) (*core.Context, error) {
	ctx, err := core.New(cfg, tbl, r.mem)
	if err != nil {
		return nil, err
	}
	r.started[cfg.ID] = true
	logx.Line("multicore", "core", conv.Int(cfg.ID), "released; vtor", conv.Addr(tbl.Base()))
	r.publish(cfg.ID, tbl.Base())
	return ctx, nil
}

func (r *roster) publish(id int, vtor uint32) {
	if r.conn == nil {
		return
	}
	r.conn.Retain(bus.T("core", id, "launch"), types.CoreLaunch{Core: id, VTOR: vtor, Debug: r.debug[id]})
}

func (r *roster) Started(id int) bool { return r.started[id] }

// Regs describes a register-controlled bring-up block. Bits for core n are
// at shift+n in their register.
type Regs struct {
	// BootAddr receives the secondary core's table pointer. Core n uses
	// BootAddr + n*BootStride.
	BootAddr   uint32
	BootStride uint32

	// ClockEnable is optional (0: the core's clock is always on).
	ClockEnable uint32
	ClockShift  uint32

	ResetRelease uint32
	ResetShift   uint32
	// ReleaseClears is set when the bit holds the core in reset and release
	// means clearing it.
	ReleaseClears bool

	// Debug is optional (0: no per-core debug gate).
	Debug      uint32
	DebugShift uint32

	// Key is OR'd into the upper half of every control-register write on
	// parts that lock those registers.
	Key uint32
}

// Launcher brings up secondary cores through a Regs block.
type Launcher struct {
	roster
	regs Regs
}

func NewLauncher(mem platform.Memory, regs Regs, primary int, cores []core.Config, conn *bus.Connection) *Launcher {
	return &Launcher{roster: newRoster(mem, primary, cores, conn), regs: regs}
}

// StartSecondary publishes vtor to the core's boot-address register and
// only then enables its clock and releases it from reset. Each core starts
// at most once.
func (l *Launcher) StartSecondary(id int, vtor uint32) (*core.Context, error) {
	const op = "multicore.StartSecondary"
	cfg, tbl, err := l.prepare(op, id, vtor)
	if err != nil {
		return nil, err
	}
	l.mem.Store32(l.regs.BootAddr+uint32(id)*l.regs.BootStride, vtor)
	platform.Barrier()

	if l.regs.ClockEnable != 0 {
		l.control(l.regs.ClockEnable, 1<<(l.regs.ClockShift+uint32(id)), true)
	}
	l.control(l.regs.ResetRelease, 1<<(l.regs.ResetShift+uint32(id)), !l.regs.ReleaseClears)
	platform.Barrier()

	return l.finish(cfg, tbl)
}

// EnableDebug opens the debug gate for a core named in the profile. It does
// not depend on whether the core has started.
func (l *Launcher) EnableDebug(id int) error {
	if _, err := l.config("multicore.EnableDebug", id); err != nil {
		return err
	}
	if l.regs.Debug != 0 {
		l.control(l.regs.Debug, 1<<(l.regs.DebugShift+uint32(id)), true)
	}
	l.debug[id] = true
	if l.started[id] {
		l.publish(id, l.mem.Load32(l.regs.BootAddr+uint32(id)*l.regs.BootStride))
	}
	return nil
}

func (l *Launcher) control(addr, mask uint32, set bool) {
	v := l.mem.Load32(addr)
	if l.regs.Key != 0 {
		v = v&0xFFFF | l.regs.Key
	}
	if set {
		v |= mask
	} else {
		v &^= mask
	}
	l.mem.Store32(addr, v)
}
