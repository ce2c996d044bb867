package main

import (
	"sort"

	"vectorcore-go/boot"
	"vectorcore-go/bootstep"
	"vectorcore-go/bus"
	"vectorcore-go/chip"
	"vectorcore-go/core"
	"vectorcore-go/dispatch"
	"vectorcore-go/multicore"
	"vectorcore-go/nvic"
	"vectorcore-go/platform"
	"vectorcore-go/types"
	"vectorcore-go/vector"
)

// Synthetic image: each core's linked table sits in its own 64 KiB flash
// window with handlers at fixed offsets.
const (
	flashWindow = 0x00010000
	stackTop    = 0x20010000
	resetOff    = 0x201
	defaultOff  = 0x301
	tickOff     = 0x401
)

// synthProgram is loaded into a board synthesiser when the profile does not
// carry its own: outputs off, CLK0 from PLLA, PLL reset, CLK0 on.
var synthProgram = []bootstep.RegWrite{{Reg: 3, Val: 0xFF}, {Reg: 16, Val: 0x4F}, {Reg: 177, Val: 0xAC}, {Reg: 3, Val: 0xFE}}

type simOptions struct {
	noRegion bool
	launch   bool
	synth    bool
	register map[int]uint32
	enable   []int
	raise    []int
}

// i2cWrite is one write seen on the simulated board bus.
type i2cWrite struct {
	Addr uint16
	bootstep.RegWrite
}

// simI2C stands in for the board I²C bus. Writes are logged and every
// status read reports a locked device.
type simI2C struct {
	writes []i2cWrite
}

func (b *simI2C) Tx(addr uint16, w, r []byte) error {
	if len(r) > 0 {
		clear(r)
		return nil
	}
	if len(w) == 2 {
		b.writes = append(b.writes, i2cWrite{Addr: addr, RegWrite: bootstep.RegWrite{Reg: w[0], Val: w[1]}})
	}
	return nil
}

// taken is one raised line as the core saw it.
type taken struct {
	Index   vector.Index
	Handler uint32
	Masked  bool
}

type coreRun struct {
	ctx      *core.Context
	seq      *boot.Sequencer
	dispatch *dispatch.Dispatcher
	nvic     *nvic.Controller
}

type simResult struct {
	profile *chip.Profile
	sim     *platform.Sim
	cores   []*coreRun
	reports []types.BootReport
	launch  []types.CoreLaunch
	halts   []error
	i2c     *simI2C
	taken   []taken
}

// image links a read-only table for c and loads it into the simulator.
func image(sim *platform.Sim, c core.Config) (*vector.Table, error) {
	base := uint32(c.ID) * flashWindow
	rom, err := vector.Build(c.Layout, stackTop-uint32(c.ID)*0x1000, base+resetOff, defaultEntry(c.ID),
		vector.Fixed{vector.SysTick: base + tickOff})
	if err != nil {
		return nil, err
	}
	if err := rom.Place(base); err != nil {
		return nil, err
	}
	sim.PokeWords(base, rom.Words())
	return rom, nil
}

// bootCore runs one core's boot sequence with its own private peripheral bus.
func bootCore(sim *platform.Sim, c core.Config, rom *vector.Table, opts boot.Options) (*coreRun, error) {
	ppb := platform.NewSim()
	nvic.Simulate(ppb)
	mem := platform.Banked{Shared: sim, Private: ppb}
	ctx, err := core.New(c, rom, mem)
	if err != nil {
		return nil, err
	}
	ctl := nvic.New(mem)
	run := &coreRun{ctx: ctx, seq: boot.New(ctx, opts), dispatch: dispatch.New(ctx, ctl), nvic: ctl}
	_ = run.seq.Run() // the halt hook records fatal conditions
	return run, nil
}

// defaultEntry is the shared handler every unassigned slot of core id's
// image points at.
func defaultEntry(id int) uint32 { return uint32(id)*flashWindow + defaultOff }

func simulate(p *chip.Profile, o simOptions) (*simResult, error) {
	if o.synth && p.Synth == nil {
		q := *p
		s := bootstep.Si5351(nil, bootstep.Si5351Addr, synthProgram)
		q.Synth = &s
		p = &q
	}
	res := &simResult{profile: p, sim: platform.NewSim()}
	if p.Synth != nil {
		res.i2c = &simI2C{}
	}
	restore := platform.SetHaltHook(func(err error) { res.halts = append(res.halts, err) })
	defer restore()

	b := bus.NewBus(32)
	conn := b.NewConnection("vecsim")
	defer conn.Disconnect()

	cfgs := make([]core.Config, len(p.Cores))
	copy(cfgs, p.Cores)
	for i := range cfgs {
		if o.noRegion {
			cfgs[i].Region = vector.Region{}
		}
		cfgs[i].TickHandler = uint32(cfgs[i].ID)*flashWindow + tickOff
	}
	roms := make([]*vector.Table, len(cfgs))
	for i, c := range cfgs {
		rom, err := image(res.sim, c)
		if err != nil {
			return nil, err
		}
		roms[i] = rom
	}

	primary := p.Primary()
	for i, c := range cfgs {
		if c.ID != primary.ID {
			continue
		}
		var synth boot.Step
		if res.i2c != nil {
			synth = p.ClockSynth(res.i2c)
		}
		run, err := bootCore(res.sim, c, roms[i], p.BootOptions(res.sim, conn, synth))
		if err != nil {
			return nil, err
		}
		res.cores = append(res.cores, run)
	}

	if o.launch && len(cfgs) > 1 && len(res.halts) == 0 {
		multicoreSim(res.sim, p)
		starter := p.Starter(res.sim, conn)
		for i, c := range cfgs {
			if c.ID == primary.ID {
				continue
			}
			if _, err := starter.StartSecondary(c.ID, roms[i].Base()); err != nil {
				return nil, err
			}
			// The secondary runs its own sequence; clocks and flash belong
			// to the primary.
			run, err := bootCore(res.sim, c, roms[i], boot.Options{Conn: conn})
			if err != nil {
				return nil, err
			}
			res.cores = append(res.cores, run)
		}
	}

	var opErr error
	if len(res.halts) == 0 && len(res.cores) > 0 {
		opErr = operate(res, res.cores[0], o)
	}

	// Final states are retained; subscribing now replays them.
	for _, m := range drain(conn.Subscribe(bus.T("boot", bus.One, "state"))) {
		res.reports = append(res.reports, m.Payload.(types.BootReport))
	}
	for _, m := range drain(conn.Subscribe(bus.T("core", bus.One, "launch"))) {
		res.launch = append(res.launch, m.Payload.(types.CoreLaunch))
	}
	sort.Slice(res.reports, func(i, j int) bool { return res.reports[i].Core < res.reports[j].Core })
	sort.Slice(res.launch, func(i, j int) bool { return res.launch[i].Core < res.launch[j].Core })
	return res, opErr
}

// operate applies the requested registrations, enables and raised lines on
// the primary.
func operate(res *simResult, run *coreRun, o simOptions) error {
	d := run.dispatch
	for idx, h := range o.register {
		if err := d.Register(vector.Index(idx), h); err != nil {
			return err
		}
	}
	for _, idx := range o.enable {
		if err := d.Enable(vector.Index(idx)); err != nil {
			return err
		}
	}
	for _, idx := range o.raise {
		tk, err := take(run, vector.Index(idx))
		if err != nil {
			return err
		}
		res.taken = append(res.taken, tk)
	}
	return nil
}

// take pends the line behind idx and, if it is enabled, acknowledges it and
// vectors through the active table. A line still on the default entry traps.
func take(run *coreRun, idx vector.Index) (taken, error) {
	line, err := run.ctx.Line(idx)
	if err != nil {
		return taken{}, err
	}
	run.nvic.SetPending(line)
	if !run.nvic.Enabled(line) || !run.nvic.Pending(line) {
		return taken{Index: idx, Masked: true}, nil
	}
	if err := run.dispatch.ClearPending(idx); err != nil {
		return taken{}, err
	}
	h, err := run.dispatch.Handler(idx)
	if err != nil {
		return taken{}, err
	}
	if h == defaultEntry(run.ctx.ID()) {
		platform.Unhandled()
	}
	return taken{Index: idx, Handler: h}, nil
}

func drain(sub *bus.Subscription) []*bus.Message {
	var out []*bus.Message
	for {
		select {
		case m := <-sub.Channel():
			out = append(out, m)
		default:
			return out
		}
	}
}

func multicoreSim(sim *platform.Sim, p *chip.Profile) {
	if p.Launch == chip.LaunchFIFO {
		multicore.SimulateROM(sim)
	}
}
