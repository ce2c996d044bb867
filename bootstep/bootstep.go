// Package bootstep builds the chip-specific actions the boot sequencer runs
// before it touches the core itself: flash latency, clock checks and
// external clock synthesisers.
package bootstep

import (
	"tinygo.org/x/drivers"

	"vectorcore-go/boot"
	"vectorcore-go/errcode"
	"vectorcore-go/platform"
	"vectorcore-go/x/conv"
	"vectorcore-go/x/logx"
	"vectorcore-go/x/mathx"
)

// Sequence runs steps in order and stops at the first failure.
func Sequence(steps ...boot.Step) boot.Step {
	return func() error {
		for _, s := range steps {
			if s == nil {
				continue
			}
			if err := s(); err != nil {
				return err
			}
		}
		return nil
	}
}

// CheckClock rejects a target frequency outside [min, max].
func CheckClock(hz, min, max uint32) boot.Step {
	return func() error {
		if hz == 0 || hz < min || (max != 0 && hz > max) {
			return errcode.New(errcode.UnsupportedClock, "bootstep.CheckClock", conv.Int(int(hz))+" Hz out of range")
		}
		return nil
	}
}

// Flash describes a flash controller latency field.
type Flash struct {
	Reg   uint32
	Shift uint32
	Mask  uint32 // field mask before shifting
	// HzPerWait is the highest clock served by each additional wait state.
	HzPerWait uint32
	MaxWait   uint32
}

// WaitStates returns the wait states needed at hz.
func (f Flash) WaitStates(hz uint32) (uint32, error) {
	if f.HzPerWait == 0 {
		return 0, errcode.New(errcode.InvalidParams, "bootstep.WaitStates", "no flash timing")
	}
	ws := mathx.CeilDiv(hz, f.HzPerWait)
	if ws > 0 {
		ws--
	}
	if ws > mathx.Min(f.MaxWait, f.Mask) {
		return 0, errcode.New(errcode.UnsupportedClock, "bootstep.WaitStates", conv.Int(int(hz))+" Hz needs "+conv.Int(int(ws))+" wait states")
	}
	return ws, nil
}

// FlashTiming programs the wait states for hz and reads them back. It must
// run before the clock is raised.
func FlashTiming(mem platform.Memory, f Flash, hz uint32) boot.Step {
	return func() error {
		ws, err := f.WaitStates(hz)
		if err != nil {
			return err
		}
		if mem == nil {
			mem = platform.Default()
		}
		v := mem.Load32(f.Reg)&^(f.Mask<<f.Shift) | ws<<f.Shift
		mem.Store32(f.Reg, v)
		if got := mem.Load32(f.Reg) >> f.Shift & f.Mask; got != ws {
			return errcode.New(errcode.StepFailed, "bootstep.FlashTiming", "latency read back "+conv.Int(int(got)))
		}
		logx.Line("boot", "flash wait states", conv.Int(int(ws)), "for", conv.Int(int(hz)), "Hz")
		return nil
	}
}

// RegWrite is one register write on an I²C clock device.
type RegWrite struct {
	Reg byte
	Val byte
}

// Synth is an external clock synthesiser programmed over I²C during the
// clock step, e.g. an Si5351 feeding the MCU's reference input.
type Synth struct {
	Bus    drivers.I2C
	Addr   uint16
	Writes []RegWrite

	// Status is polled after the writes until none of the Busy bits are
	// set, at most Polls times. Busy == 0 skips the poll.
	Status byte
	Busy   byte
	Polls  int
}

// Si5351 status bits: SYS_INIT, LOL_B, LOL_A.
const (
	Si5351Addr   = 0x60
	Si5351Status = 0x00
	Si5351Busy   = 0x80 | 0x40 | 0x20
)

// Si5351 returns a synthesiser at addr that takes writes in order and is
// then polled until it has initialised and both PLLs are locked.
func Si5351(bus drivers.I2C, addr uint16, writes []RegWrite) Synth {
	return Synth{Bus: bus, Addr: addr, Writes: writes, Status: Si5351Status, Busy: Si5351Busy}
}

func (s Synth) Step() boot.Step {
	return func() error {
		for _, w := range s.Writes {
			if err := s.Bus.Tx(s.Addr, []byte{w.Reg, w.Val}, nil); err != nil {
				return errcode.Wrap(errcode.StepFailed, "bootstep.Synth", err)
			}
		}
		if s.Busy == 0 {
			return nil
		}
		polls := s.Polls
		if polls <= 0 {
			polls = 1000
		}
		var st [1]byte
		for i := 0; i < polls; i++ {
			if err := s.Bus.Tx(s.Addr, []byte{s.Status}, st[:]); err != nil {
				return errcode.Wrap(errcode.StepFailed, "bootstep.Synth", err)
			}
			if st[0]&s.Busy == 0 {
				return nil
			}
		}
		return errcode.New(errcode.UnsupportedClock, "bootstep.Synth", "synthesiser did not lock")
	}
}
