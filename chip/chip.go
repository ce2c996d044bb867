// Package chip resolves a part name to the per-core configuration the boot,
// dispatch and multicore packages consume.
package chip

import (
	"sort"
	"strings"

	"github.com/google/shlex"
	"tinygo.org/x/drivers"

	"vectorcore-go/boot"
	"vectorcore-go/bootstep"
	"vectorcore-go/bus"
	"vectorcore-go/core"
	"vectorcore-go/errcode"
	"vectorcore-go/multicore"
	"vectorcore-go/platform"
	"vectorcore-go/vector"
	"vectorcore-go/x/strconvx"
)

// Launch selects how secondary cores are brought up.
type Launch uint8

const (
	LaunchNone Launch = iota // single core
	LaunchFIFO               // boot ROM mailbox handshake
	LaunchRegs               // boot-address and reset registers
)

func (l Launch) String() string {
	switch l {
	case LaunchFIFO:
		return "fifo"
	case LaunchRegs:
		return "regs"
	}
	return "none"
}

// Profile is everything the core layer needs to know about one part.
type Profile struct {
	Name  string
	CPUHz uint32
	MinHz uint32
	MaxHz uint32

	// Flash is nil when the part needs no wait-state setup.
	Flash *bootstep.Flash
	// Synth is the board's external clock synthesiser, if any. The bus is
	// supplied at boot through ClockSynth.
	Synth *bootstep.Synth

	Cores   []core.Config
	Launch  Launch
	Bringup multicore.Regs
}

// EmbeddedProfileLookup allows overriding how profiles are resolved.
var EmbeddedProfileLookup = func(name string) (string, bool) {
	s, ok := embeddedProfiles[name]
	return s, ok
}

// Names lists the embedded profiles.
func Names() []string {
	out := make([]string, 0, len(embeddedProfiles))
	for k := range embeddedProfiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves and parses a profile by name.
func Lookup(name string) (*Profile, error) {
	src, ok := EmbeddedProfileLookup(name)
	if !ok || strings.TrimSpace(src) == "" {
		return nil, errcode.New(errcode.UnknownChip, "chip.Lookup", "no profile for "+name)
	}
	return Parse(name, src)
}

// Core returns the configuration of core id.
func (p *Profile) Core(id int) (core.Config, bool) {
	for _, c := range p.Cores {
		if c.ID == id {
			return c, true
		}
	}
	return core.Config{}, false
}

// Primary is the core that boots first: the lowest id.
func (p *Profile) Primary() core.Config {
	best := p.Cores[0]
	for _, c := range p.Cores[1:] {
		if c.ID < best.ID {
			best = c
		}
	}
	return best
}

// BootOptions wires the profile's flash timing and clock limits into the
// collaborator steps of a boot sequence. extra runs after the clock check
// in the clock step, e.g. an external synthesiser.
func (p *Profile) BootOptions(mem platform.Memory, conn *bus.Connection, extra ...boot.Step) boot.Options {
	opts := boot.Options{Conn: conn}
	if p.Flash != nil {
		opts.FlashTiming = bootstep.FlashTiming(mem, *p.Flash, p.CPUHz)
	}
	clocks := append([]boot.Step{bootstep.CheckClock(p.CPUHz, p.MinHz, p.MaxHz)}, extra...)
	opts.Clocks = bootstep.Sequence(clocks...)
	return opts
}

// ClockSynth returns the clock-step action that programs the profile's
// synthesiser over i2c, or nil when the board has none.
func (p *Profile) ClockSynth(i2c drivers.I2C) boot.Step {
	if p.Synth == nil {
		return nil
	}
	if i2c == nil {
		return func() error {
			return errcode.New(errcode.InvalidParams, "chip.ClockSynth", p.Name+": synthesiser without an i2c bus")
		}
	}
	s := *p.Synth
	s.Bus = i2c
	return s.Step()
}

// Starter returns the secondary-core launcher for the part, or nil on
// single-core parts.
func (p *Profile) Starter(mem platform.Memory, conn *bus.Connection) multicore.Starter {
	if mem == nil {
		mem = platform.Default()
	}
	primary := p.Primary().ID
	switch p.Launch {
	case LaunchFIFO:
		f := multicore.NewFIFOLauncher(mem, multicore.NewSIOMailbox(mem, 0), primary, p.Cores, conn)
		f.ResetCore = multicore.ResetCore1(mem)
		return f
	case LaunchRegs:
		return multicore.NewLauncher(mem, p.Bringup, primary, p.Cores, conn)
	}
	return nil
}

// Parse reads a profile from its token form.
func Parse(name, src string) (*Profile, error) {
	toks, err := shlex.Split(src)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "chip.Parse", err)
	}
	p := &Profile{Name: name}
	var cur *core.Config
	var tick []uint32

	for _, tok := range toks {
		if tok == "core" {
			p.Cores = append(p.Cores, core.Config{ID: len(p.Cores), Layout: vector.Layout{Exceptions: 16}})
			tick = append(tick, 0)
			cur = &p.Cores[len(p.Cores)-1]
			continue
		}
		k, v, _ := strings.Cut(tok, "=")
		if cur != nil {
			err = coreField(cur, &tick[len(tick)-1], k, v)
		} else {
			err = chipField(p, k, v)
		}
		if err != nil {
			return nil, errcode.Wrap(errcode.InvalidParams, "chip.Parse "+name, err)
		}
	}

	if len(p.Cores) == 0 {
		return nil, errcode.New(errcode.InvalidParams, "chip.Parse", name+": no cores")
	}
	if p.CPUHz == 0 {
		return nil, errcode.New(errcode.InvalidParams, "chip.Parse", name+": no hz")
	}
	seen := map[int]bool{}
	for i := range p.Cores {
		c := &p.Cores[i]
		if seen[c.ID] {
			return nil, errcode.New(errcode.InvalidParams, "chip.Parse", name+": duplicate core id")
		}
		seen[c.ID] = true
		if tick[i] != 0 {
			c.TickReload = p.CPUHz/tick[i] - 1
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	if len(p.Cores) > 1 && p.Launch == LaunchNone {
		return nil, errcode.New(errcode.InvalidParams, "chip.Parse", name+": several cores but no launch method")
	}
	return p, nil
}

func chipField(p *Profile, k, v string) (err error) {
	switch k {
	case "name":
		p.Name = v
	case "hz":
		p.CPUHz, err = strconvx.ParseHz(v)
	case "min_hz":
		p.MinHz, err = strconvx.ParseHz(v)
	case "max_hz":
		p.MaxHz, err = strconvx.ParseHz(v)
	case "launch":
		switch v {
		case "fifo":
			p.Launch = LaunchFIFO
		case "regs":
			p.Launch = LaunchRegs
		case "none":
			p.Launch = LaunchNone
		default:
			return errcode.New(errcode.InvalidParams, "launch", v)
		}
	case "flash":
		p.Flash, err = parseFlash(v)
	case "boot":
		p.Bringup.BootAddr, err = strconvx.ParseU32(v)
	case "boot_stride":
		p.Bringup.BootStride, err = strconvx.ParseU32(v)
	case "clock":
		p.Bringup.ClockEnable, p.Bringup.ClockShift, err = regBit(v)
	case "reset":
		p.Bringup.ResetRelease, p.Bringup.ResetShift, err = regBit(v)
	case "debug":
		p.Bringup.Debug, p.Bringup.DebugShift, err = regBit(v)
	case "release":
		switch v {
		case "clear":
			p.Bringup.ReleaseClears = true
		case "set":
			p.Bringup.ReleaseClears = false
		default:
			return errcode.New(errcode.InvalidParams, "release", v)
		}
	case "key":
		p.Bringup.Key, err = strconvx.ParseU32(v)
	case "synth":
		var a uint32
		if a, err = strconvx.ParseU32(v); err == nil && a > 0x7F {
			err = errcode.New(errcode.InvalidParams, "synth", "i2c address "+v)
		}
		p.synth().Addr = uint16(a)
	case "synth_reg":
		var r, val uint32
		if r, val, err = pair(v); err == nil && (r > 0xFF || val > 0xFF) {
			err = errcode.New(errcode.InvalidParams, "synth_reg", v)
		}
		s := p.synth()
		s.Writes = append(s.Writes, bootstep.RegWrite{Reg: byte(r), Val: byte(val)})
	default:
		return errcode.New(errcode.InvalidParams, "chip", "unknown key "+k)
	}
	return err
}

// synth returns the profile's synthesiser, creating an Si5351 at its
// default address on first use.
func (p *Profile) synth() *bootstep.Synth {
	if p.Synth == nil {
		s := bootstep.Si5351(nil, bootstep.Si5351Addr, nil)
		p.Synth = &s
	}
	return p.Synth
}

func coreField(c *core.Config, tick *uint32, k, v string) (err error) {
	var n uint32
	switch k {
	case "id":
		n, err = strconvx.ParseU32(v)
		c.ID = int(n)
	case "arch":
		a, ok := vector.ParseArch(v)
		if !ok {
			return errcode.New(errcode.InvalidParams, "arch", v)
		}
		c.Layout.Arch = a
	case "exceptions":
		n, err = strconvx.ParseU32(v)
		c.Layout.Exceptions = int(n)
	case "irqs":
		n, err = strconvx.ParseU32(v)
		c.Layout.Peripherals = int(n)
	case "fpu":
		c.FPU, err = flag(k, v)
	case "faults":
		c.FaultIsolation, err = flag(k, v)
	case "region":
		c.Region.Base, c.Region.Size, err = pair(v)
	case "tick":
		*tick, err = strconvx.ParseHz(v)
	case "tick_handler":
		c.TickHandler, err = strconvx.ParseU32(v)
	default:
		return errcode.New(errcode.InvalidParams, "core", "unknown key "+k)
	}
	return err
}

// flag reads a boolean core feature; a bare key means true.
func flag(k, v string) (bool, error) {
	switch v {
	case "", "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, errcode.New(errcode.InvalidParams, k, v)
}

// pair parses "a:b".
func pair(v string) (a, b uint32, err error) {
	as, bs, ok := strings.Cut(v, ":")
	if !ok {
		return 0, 0, errcode.New(errcode.InvalidParams, "pair", v)
	}
	if a, err = strconvx.ParseU32(as); err != nil {
		return
	}
	b, err = strconvx.ParseU32(bs)
	return
}

// regBit parses "addr:shift".
func regBit(v string) (uint32, uint32, error) {
	a, s, err := pair(v)
	if err == nil && s > 31 {
		err = errcode.New(errcode.InvalidParams, "shift", v)
	}
	return a, s, err
}

// parseFlash reads "reg:shift:mask:hz_per_wait:max_wait".
func parseFlash(v string) (*bootstep.Flash, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 5 {
		return nil, errcode.New(errcode.InvalidParams, "flash", v)
	}
	var f bootstep.Flash
	var err error
	if f.Reg, err = strconvx.ParseU32(parts[0]); err != nil {
		return nil, err
	}
	if f.Shift, err = strconvx.ParseU32(parts[1]); err != nil {
		return nil, err
	}
	if f.Mask, err = strconvx.ParseU32(parts[2]); err != nil {
		return nil, err
	}
	if f.HzPerWait, err = strconvx.ParseHz(parts[3]); err != nil {
		return nil, err
	}
	if f.MaxWait, err = strconvx.ParseU32(parts[4]); err != nil {
		return nil, err
	}
	return &f, nil
}
