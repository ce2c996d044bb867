// Package boot runs the one-shot bring-up of a single core, from memory
// timing through fault isolation, in a fixed order.
package boot

import (
	"vectorcore-go/bus"
	"vectorcore-go/core"
	"vectorcore-go/errcode"
	"vectorcore-go/platform"
	"vectorcore-go/scs"
	"vectorcore-go/types"
	"vectorcore-go/vector"
	"vectorcore-go/x/conv"
	"vectorcore-go/x/logx"
)

// State of a core's boot sequence. Transitions only move forward.
type State uint8

const (
	NotStarted State = iota
	InProgress
	Complete
	Halted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Complete:
		return "complete"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// StepID names one boot step.
type StepID uint8

const (
	StepFlash StepID = iota
	StepClocks
	StepFPU
	StepRelocate
	StepTick
	StepFaults
)

func (s StepID) String() string {
	switch s {
	case StepFlash:
		return "flash"
	case StepClocks:
		return "clocks"
	case StepFPU:
		return "fpu"
	case StepRelocate:
		return "relocate"
	case StepTick:
		return "systick"
	case StepFaults:
		return "faults"
	}
	return "unknown"
}

// Order is the chip-independent step order. Flash timing precedes any clock
// increase; clocks precede SysTick; fault isolation comes last.
var Order = [...]StepID{StepFlash, StepClocks, StepFPU, StepRelocate, StepTick, StepFaults}

// Step is a collaborator-supplied boot action (flash wait states, clock
// tree). A nil Step means the chip needs nothing at that point.
type Step func() error

// Options carries the chip-specific collaborators.
type Options struct {
	FlashTiming Step
	Clocks      Step

	// Conn, when set, receives the retained report on boot/<core>/state.
	Conn *bus.Connection
}

// Sequencer boots one core. It is not safe for concurrent use; boot runs
// before anything else on the core.
type Sequencer struct {
	ctx  *core.Context
	mem  platform.Memory
	opts Options

	state     State
	ran       []StepID
	tickArmed bool
	err       error
}

func New(ctx *core.Context, opts Options) *Sequencer {
	return &Sequencer{ctx: ctx, mem: ctx.Memory(), opts: opts}
}

func (s *Sequencer) Context() *core.Context { return s.ctx }
func (s *Sequencer) State() State           { return s.state }
func (s *Sequencer) TickArmed() bool        { return s.tickArmed }

// Err is the fatal condition that halted boot, if any.
func (s *Sequencer) Err() error { return s.err }

// Ran lists the steps that were applied, in execution order.
func (s *Sequencer) Ran() []StepID { return append([]StepID(nil), s.ran...) }

// Run executes every step once. A second call returns errcode.BootStarted.
//
// A fatal condition halts the core through platform.Halt and does not
// return on hardware. Under a host halt hook, Run returns the condition.
func (s *Sequencer) Run() error {
	if s.state != NotStarted {
		return errcode.New(errcode.BootStarted, "boot.Run", s.state.String())
	}
	s.state = InProgress
	s.publish()

	mask := platform.DisableInterrupts()
	for _, id := range Order {
		applied, err := s.step(id)
		if err != nil {
			s.halt(id, err)
			return s.err
		}
		if applied {
			s.ran = append(s.ran, id)
		}
	}
	s.state = Complete
	s.publish()
	logx.Line("boot", "core", conv.Int(s.ctx.ID()), "complete; vtor", conv.Addr(s.ctx.Active().Base()))
	platform.RestoreInterrupts(mask)
	return nil
}

func (s *Sequencer) step(id StepID) (bool, error) {
	cfg := s.ctx.Config()
	switch id {
	case StepFlash:
		return s.collaborator(id, s.opts.FlashTiming)
	case StepClocks:
		return s.collaborator(id, s.opts.Clocks)
	case StepFPU:
		if !cfg.FPU {
			return false, nil
		}
		scs.GrantFPU(s.mem)
		return true, nil
	case StepRelocate:
		return true, s.relocate()
	case StepTick:
		return s.armTick()
	case StepFaults:
		if !cfg.FaultIsolation {
			return false, nil
		}
		scs.EnableFaultIsolation(s.mem)
		return true, nil
	}
	return false, nil
}

func (s *Sequencer) collaborator(id StepID, fn Step) (bool, error) {
	if fn == nil {
		return false, nil
	}
	if err := fn(); err != nil {
		if errcode.Fatal(errcode.Of(err)) {
			return false, err
		}
		return false, errcode.Wrap(errcode.StepFailed, "boot."+id.String(), err)
	}
	return true, nil
}

func (s *Sequencer) relocate() error {
	rom := s.ctx.ROM()
	if err := vector.CheckAlignment(rom.Base(), rom.Layout()); err != nil {
		return err
	}
	ram, err := s.ctx.Relocate(s.ctx.Config().Region)
	switch errcode.Of(err) {
	case errcode.OK:
		scs.SetVTOR(s.mem, ram.Base())
		logx.Line("boot", "core", conv.Int(s.ctx.ID()), "table relocated to", conv.Addr(ram.Base()))
		return nil
	case errcode.NoRegion:
		logx.Line("boot", "core", conv.Int(s.ctx.ID()), "no writable region; table stays at", conv.Addr(rom.Base()))
		return nil
	case errcode.AlreadyRelocated:
		scs.SetVTOR(s.mem, s.ctx.Active().Base())
		return nil
	}
	return err
}

// armTick starts SysTick only when the table is writable. Against a
// read-only table its handler could never be replaced.
func (s *Sequencer) armTick() (bool, error) {
	cfg := s.ctx.Config()
	if !s.ctx.Relocated() {
		logx.Line("boot", "core", conv.Int(s.ctx.ID()), "table not relocated; systick left off")
		return false, nil
	}
	if cfg.TickReload == 0 || cfg.Layout.Exceptions <= int(vector.SysTick) {
		return false, nil
	}
	if cfg.TickHandler != 0 {
		if err := s.ctx.Active().Replace(vector.SysTick, cfg.TickHandler); err != nil {
			return false, err
		}
	}
	if err := scs.ArmSysTick(s.mem, cfg.TickReload); err != nil {
		return false, err
	}
	s.tickArmed = true
	return true, nil
}

func (s *Sequencer) halt(id StepID, err error) {
	s.state = Halted
	s.err = err
	s.publish()
	logx.Line("boot", "core", conv.Int(s.ctx.ID()), "halted at", id.String()+":", err.Error())
	platform.Halt(err)
}

func (s *Sequencer) publish() {
	if s.opts.Conn == nil {
		return
	}
	r := types.BootReport{
		Core:      s.ctx.ID(),
		State:     s.state.String(),
		Relocated: s.ctx.Relocated(),
		TickArmed: s.tickArmed,
		VTOR:      s.ctx.Active().Base(),
	}
	for _, id := range s.ran {
		r.Steps = append(r.Steps, id.String())
	}
	if s.err != nil {
		r.Error = string(errcode.Of(s.err))
	}
	s.opts.Conn.Retain(bus.T("boot", s.ctx.ID(), "state"), r)
}
