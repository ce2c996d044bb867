package main

import (
	"bytes"
	"strings"
	"testing"

	"vectorcore-go/chip"
	"vectorcore-go/errcode"
	"vectorcore-go/scs"
	"vectorcore-go/x/logx"
)

func lookup(t *testing.T, name string) *chip.Profile {
	t.Helper()
	p, err := chip.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", name, err)
	}
	return p
}

func TestSimulateEveryProfile(t *testing.T) {
	defer logx.SetOutput(nil)()
	for _, name := range chip.Names() {
		res, err := simulate(lookup(t, name), simOptions{launch: true})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(res.halts) != 0 {
			t.Fatalf("%s: halted: %v", name, res.halts)
		}
		p := res.profile
		if len(res.cores) != len(p.Cores) || len(res.reports) != len(p.Cores) {
			t.Fatalf("%s: %d cores booted, %d reports", name, len(res.cores), len(res.reports))
		}
		for _, r := range res.reports {
			if r.State != "complete" || !r.Relocated || !r.TickArmed {
				t.Fatalf("%s: report %+v", name, r)
			}
		}
		if len(res.launch) != len(p.Cores)-1 {
			t.Fatalf("%s: launches = %+v", name, res.launch)
		}
		for _, c := range res.cores {
			if scs.GetVTOR(c.ctx.Memory()) != c.ctx.Config().Region.Base {
				t.Fatalf("%s core %d: VTOR not banked per core", name, c.ctx.ID())
			}
		}
	}
}

func TestSimulateWithoutRegion(t *testing.T) {
	defer logx.SetOutput(nil)()
	res, err := simulate(lookup(t, "nrf52840"), simOptions{noRegion: true, register: map[int]uint32{20: 0x1001}})
	if errcode.Of(err) != errcode.NotRelocated {
		t.Fatalf("err = %v", err)
	}
	r := res.reports[0]
	if r.Relocated || r.TickArmed || r.State != "complete" {
		t.Fatalf("report = %+v", r)
	}
}

func TestSimulateRegisterAndEnable(t *testing.T) {
	defer logx.SetOutput(nil)()
	res, err := simulate(lookup(t, "samd51"), simOptions{
		register: map[int]uint32{16 + 10: 0x4001},
		enable:   []int{16 + 10},
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	c := res.cores[0]
	if h, _ := c.dispatch.Handler(26); h != 0x4001 {
		t.Fatalf("handler = %#x", h)
	}
	if !c.nvic.Enabled(10) {
		t.Fatal("line 10 not enabled")
	}

	var out bytes.Buffer
	printResult(&out, res, true)
	for _, want := range []string{"core 0: complete", "enabled lines 10", "irq10", "0x00004001"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output lacks %q:\n%s", want, out.String())
		}
	}
}

func TestParseRegistrations(t *testing.T) {
	got, err := parseRegistrations([]string{"20=0x1001", "0x15=4097"})
	if err != nil || got[20] != 0x1001 || got[21] != 4097 {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := parseRegistrations([]string{"20"}); err == nil {
		t.Fatal("missing address accepted")
	}
}

func TestBootCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"boot", "rp2040", "--launch"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"core 0: complete", "core 1: complete", "core 1: launched  vtor=0x00010000"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output lacks %q:\n%s", want, out.String())
		}
	}
}

func TestSimulateClockSynth(t *testing.T) {
	defer logx.SetOutput(nil)()
	res, err := simulate(lookup(t, "samd51"), simOptions{synth: true})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(res.halts) != 0 {
		t.Fatalf("halted: %v", res.halts)
	}
	if res.i2c == nil || len(res.i2c.writes) != len(synthProgram) {
		t.Fatalf("i2c = %+v", res.i2c)
	}
	for i, wr := range res.i2c.writes {
		if wr.Addr != 0x60 || wr.RegWrite != synthProgram[i] {
			t.Fatalf("write %d = %+v", i, wr)
		}
	}

	var out bytes.Buffer
	printResult(&out, res, false)
	if !strings.Contains(out.String(), "i2c 0x60: reg 177 <- 0xAC") {
		t.Fatalf("output lacks the synthesiser writes:\n%s", out.String())
	}

	plain, err := simulate(lookup(t, "samd51"), simOptions{})
	if err != nil || plain.i2c != nil {
		t.Fatalf("no synthesiser requested: i2c=%+v err=%v", plain.i2c, err)
	}
}

func TestSimulateRaise(t *testing.T) {
	defer logx.SetOutput(nil)()
	res, err := simulate(lookup(t, "nrf52840"), simOptions{
		register: map[int]uint32{20: 0x5001},
		enable:   []int{20, 21},
		raise:    []int{20, 22, 21},
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(res.taken) != 3 {
		t.Fatalf("taken = %+v", res.taken)
	}
	if tk := res.taken[0]; tk.Masked || tk.Handler != 0x5001 {
		t.Fatalf("registered line: %+v", tk)
	}
	if !res.taken[1].Masked || !res.cores[0].nvic.Pending(6) {
		t.Fatalf("disabled line should stay pending: %+v", res.taken[1])
	}
	if res.cores[0].nvic.Pending(4) {
		t.Fatal("taken line must be acknowledged")
	}
	// Line 5 is enabled but still on the default entry.
	if tk := res.taken[2]; tk.Handler != defaultEntry(0) {
		t.Fatalf("unregistered line: %+v", tk)
	}
	if len(res.halts) != 1 || errcode.Of(res.halts[0]) != errcode.Error {
		t.Fatalf("halts = %v", res.halts)
	}

	var out bytes.Buffer
	printResult(&out, res, false)
	for _, want := range []string{"raise 20: vectored to 0x00005001", "raise 22: masked", "halted:"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output lacks %q:\n%s", want, out.String())
		}
	}
}

func TestTableCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"table", "rp2040", "--core", "1"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil); rootCmd.SetErr(nil) })

	var logged []string
	defer logx.SetOutput(func(s string) { logged = append(logged, s) })()
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"base=0x00010000  rom  entries=42", "systick", "0x00010401"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output lacks %q:\n%s", want, out.String())
		}
	}
	if len(logged) != 0 {
		t.Fatalf("table must not boot anything, logged %q", logged)
	}
}
