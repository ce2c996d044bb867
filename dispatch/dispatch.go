// Package dispatch is the run-time interrupt API: enabling and disabling
// peripheral lines by abstract index and registering handlers in a core's
// relocated vector table.
package dispatch

import (
	"vectorcore-go/core"
	"vectorcore-go/errcode"
	"vectorcore-go/platform"
	"vectorcore-go/vector"
	"vectorcore-go/x/conv"
)

// Controller is the vendor enable/disable primitive, keyed by the
// controller's own line number. *nvic.Controller satisfies it.
type Controller interface {
	Enable(line uint32)
	Disable(line uint32)
	ClearPending(line uint32)
}

// Dispatcher serves one core. Register must only be called from the main
// context; callers registering from interrupt context serialise with
// Critical.
type Dispatcher struct {
	ctx *core.Context
	ctl Controller
}

func New(ctx *core.Context, ctl Controller) *Dispatcher {
	return &Dispatcher{ctx: ctx, ctl: ctl}
}

func (d *Dispatcher) Context() *core.Context { return d.ctx }

// Enable unmasks the peripheral line behind index. Core exception indices
// are rejected without touching the controller.
func (d *Dispatcher) Enable(index vector.Index) error {
	line, err := d.ctx.Line(index)
	if err != nil {
		return errcode.Wrap(errcode.InvalidIndex, "dispatch.Enable", err)
	}
	d.ctl.Enable(line)
	return nil
}

// Disable masks the line behind index. Disabling a disabled line is a no-op.
// An interrupt already latched may still run; use ClearPending after
// Disable when that matters.
func (d *Dispatcher) Disable(index vector.Index) error {
	line, err := d.ctx.Line(index)
	if err != nil {
		return errcode.Wrap(errcode.InvalidIndex, "dispatch.Disable", err)
	}
	d.ctl.Disable(line)
	return nil
}

func (d *Dispatcher) ClearPending(index vector.Index) error {
	line, err := d.ctx.Line(index)
	if err != nil {
		return errcode.Wrap(errcode.InvalidIndex, "dispatch.ClearPending", err)
	}
	d.ctl.ClearPending(line)
	return nil
}

// Register installs handler at index in the core's relocated table. The
// previous entry is overwritten; there is no chaining.
func (d *Dispatcher) Register(index vector.Index, handler uint32) error {
	if !d.ctx.Relocated() {
		return errcode.New(errcode.NotRelocated, "dispatch.Register", "core "+conv.Int(d.ctx.ID())+" runs from a read-only table")
	}
	return d.ctx.Active().Replace(index, handler)
}

// Handler returns the entry currently installed at index.
func (d *Dispatcher) Handler(index vector.Index) (uint32, error) {
	s, ok := d.ctx.Active().Slot(index)
	if !ok {
		return 0, errcode.New(errcode.InvalidIndex, "dispatch.Handler", "")
	}
	return s.Addr, nil
}

// InRAM reports whether handlers can be registered on this core.
func (d *Dispatcher) InRAM() bool { return d.ctx.Relocated() }

// Critical runs fn with interrupts masked and restores the previous mask,
// so nested sections leave an outer section masked.
func Critical(fn func()) {
	s := platform.DisableInterrupts()
	defer platform.RestoreInterrupts(s)
	fn()
}
