package chip

import (
	"testing"

	"tinygo.org/x/drivers"

	"vectorcore-go/errcode"
	"vectorcore-go/multicore"
	"vectorcore-go/platform"
	"vectorcore-go/vector"
)

func TestEmbeddedProfilesParse(t *testing.T) {
	for _, name := range Names() {
		p, err := Lookup(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if p.Name != name {
			t.Fatalf("%s: name = %q", name, p.Name)
		}
		for _, c := range p.Cores {
			if c.Region.Empty() {
				continue
			}
			if err := vector.CheckAlignment(c.Region.Base, c.Layout); err != nil {
				t.Fatalf("%s core %d: region %#x: %v", name, c.ID, c.Region.Base, err)
			}
			if c.Region.Size < c.Layout.ByteLen() {
				t.Fatalf("%s core %d: region too small", name, c.ID)
			}
			if c.TickReload == 0 || c.TickReload > 0xFFFFFF {
				t.Fatalf("%s core %d: reload %d", name, c.ID, c.TickReload)
			}
		}
	}
}

func TestRP2040Profile(t *testing.T) {
	p, err := Lookup("rp2040")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.CPUHz != 125_000_000 || p.Launch != LaunchFIFO || p.Flash != nil {
		t.Fatalf("profile = %+v", p)
	}
	if len(p.Cores) != 2 {
		t.Fatalf("cores = %d", len(p.Cores))
	}
	c1, ok := p.Core(1)
	if !ok {
		t.Fatal("no core 1")
	}
	if c1.Layout != (vector.Layout{Arch: vector.ARMv6M, Exceptions: 16, Peripherals: 26}) {
		t.Fatalf("layout = %+v", c1.Layout)
	}
	if c1.Region != (vector.Region{Base: 0x20041000, Size: 256}) {
		t.Fatalf("region = %+v", c1.Region)
	}
	if c1.TickReload != 124_999 || c1.FPU || c1.FaultIsolation {
		t.Fatalf("core 1 = %+v", c1)
	}
	if p.Primary().ID != 0 {
		t.Fatal("primary must be core 0")
	}
	if _, ok := p.Starter(platform.NewSim(), nil).(*multicore.FIFOLauncher); !ok {
		t.Fatal("rp2040 should launch through the mailbox")
	}
}

func TestLPC55S69Bringup(t *testing.T) {
	p, err := Lookup("lpc55s69")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	r := p.Bringup
	if r.BootAddr != 0x50000804 || r.ClockEnable != 0x50000800 || r.ClockShift != 2 ||
		r.ResetShift != 4 || !r.ReleaseClears || r.Key != 0xC0C40000 {
		t.Fatalf("regs = %+v", r)
	}
	c1, _ := p.Core(1)
	if c1.FPU || !c1.FaultIsolation {
		t.Fatalf("core 1 = %+v", c1)
	}
	if _, ok := p.Starter(nil, nil).(*multicore.Launcher); !ok {
		t.Fatal("lpc55s69 should use the register launcher")
	}
	single, _ := Lookup("nrf52840")
	if single.Starter(nil, nil) != nil {
		t.Fatal("single-core part has no launcher")
	}
}

func TestLookupOverride(t *testing.T) {
	old := EmbeddedProfileLookup
	EmbeddedProfileLookup = func(name string) (string, bool) {
		if name != "tiny" {
			return "", false
		}
		return `hz=8M core arch=m0 irqs=4`, true
	}
	t.Cleanup(func() { EmbeddedProfileLookup = old })

	p, err := Lookup("tiny")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	c := p.Cores[0]
	if c.ID != 0 || c.Layout.Len() != 20 || !c.Region.Empty() || c.TickReload != 0 {
		t.Fatalf("core = %+v", c)
	}
	if _, err := Lookup("rp2040"); errcode.Of(err) != errcode.UnknownChip {
		t.Fatalf("overridden lookup: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		``,
		`hz=1M`,
		`core arch=v7m irqs=8`,
		`hz=1M bogus=1 core`,
		`hz=1M core arch=riscv`,
		`hz=1M core region=0x100`,
		`hz=1M core id=0 core id=0`,
		`hz=1M core core`,
		`hz=1M core arch=v6m faults`,
		`hz=1M launch=magic core`,
		`hz=1M flash=1:2:3 core`,
		`hz=1M "unterminated core`,
		`hz=1M core fpu=maybe`,
		`hz=1M synth=0x80 core`,
		`hz=1M synth_reg=3 core`,
		`hz=1M synth_reg=300:1 core`,
	} {
		if _, err := Parse("x", src); errcode.Of(err) != errcode.InvalidParams {
			t.Fatalf("Parse(%q) err = %v", src, err)
		}
	}
}

func TestBootOptionsProgramFlash(t *testing.T) {
	p, err := Lookup("samd21")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	sim := platform.NewSim()
	opts := p.BootOptions(sim, nil)
	if opts.FlashTiming == nil || opts.Clocks == nil {
		t.Fatal("collaborator steps missing")
	}
	if err := opts.FlashTiming(); err != nil {
		t.Fatalf("flash: %v", err)
	}
	if got := sim.Load32(0x41004004) >> 1 & 0xF; got != 1 {
		t.Fatalf("RWS = %d, want 1 at 48 MHz", got)
	}
	if err := opts.Clocks(); err != nil {
		t.Fatalf("clocks: %v", err)
	}

	ran := false
	opts = p.BootOptions(sim, nil, func() error { ran = true; return nil })
	_ = opts.Clocks()
	if !ran {
		t.Fatal("extra clock step not run")
	}
}

func TestCoreFlags(t *testing.T) {
	p, err := Parse("x", `hz=64M launch=regs core arch=m4 fpu=false faults=0 core id=1 arch=m4 fpu=1 faults`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c := p.Cores[0]; c.FPU || c.FaultIsolation {
		t.Fatalf("core 0 = %+v", c)
	}
	if c := p.Cores[1]; !c.FPU || !c.FaultIsolation {
		t.Fatalf("core 1 = %+v", c)
	}
}

var _ drivers.I2C = (*i2cLog)(nil)

// i2cLog records writes and reports a locked synthesiser on every read.
type i2cLog struct {
	addr   []uint16
	writes [][]byte
}

func (b *i2cLog) Tx(addr uint16, w, r []byte) error {
	if len(r) > 0 {
		r[0] = 0
		return nil
	}
	b.addr = append(b.addr, addr)
	b.writes = append(b.writes, append([]byte(nil), w...))
	return nil
}

func TestClockStepProgramsSynth(t *testing.T) {
	p, err := Parse("board", `hz=48M max_hz=48M synth=0x61 synth_reg=3:0xFF synth_reg=16:0x4F synth_reg=3:0xFE core arch=v6m irqs=29`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Synth == nil || p.Synth.Addr != 0x61 || len(p.Synth.Writes) != 3 {
		t.Fatalf("synth = %+v", p.Synth)
	}

	i2c := &i2cLog{}
	opts := p.BootOptions(platform.NewSim(), nil, p.ClockSynth(i2c))
	if err := opts.Clocks(); err != nil {
		t.Fatalf("clocks: %v", err)
	}
	if len(i2c.writes) != 3 || i2c.addr[0] != 0x61 || i2c.writes[1][0] != 16 || i2c.writes[1][1] != 0x4F {
		t.Fatalf("i2c writes = %v to %v", i2c.writes, i2c.addr)
	}

	opts = p.BootOptions(platform.NewSim(), nil, p.ClockSynth(nil))
	if err := opts.Clocks(); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("no bus: %v", err)
	}

	plain, _ := Lookup("samd21")
	if plain.ClockSynth(i2c) != nil {
		t.Fatal("part without a synthesiser has no clock action")
	}
}
