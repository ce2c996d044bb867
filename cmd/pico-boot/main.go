//go:build rp2040

// pico-boot runs the boot sequence on an RP2040: core 0 moves its vector
// table into scratch SRAM, then core 1 is released into a table of its own.
package main

import (
	"context"
	"time"

	"vectorcore-go/boot"
	"vectorcore-go/bus"
	"vectorcore-go/chip"
	"vectorcore-go/core"
	"vectorcore-go/dispatch"
	"vectorcore-go/nvic"
	"vectorcore-go/platform"
	"vectorcore-go/scs"
	"vectorcore-go/services/monitor"
	"vectorcore-go/vector"
	"vectorcore-go/x/conv"
	"vectorcore-go/x/logx"
)

// RTC_IRQ: present on every RP2040 and unused by the runtime.
const spareLine = 25

func fail(err error) {
	logx.Line("main", "fatal:", err.Error())
	platform.Halt(err)
}

func main() {
	// Allow the console to come up before we print.
	time.Sleep(2 * time.Second)

	p, err := chip.Lookup("rp2040")
	if err != nil {
		fail(err)
		return
	}
	mem := platform.Default()

	b := bus.NewBus(8)
	conn := b.NewConnection("pico-boot")
	mon := &monitor.Service{Interval: 5 * time.Second}
	_ = mon.Start(context.Background(), b.NewConnection("monitor"))

	c0 := p.Primary()
	// The runtime keeps time with the TIMER block; SysTick stays off.
	c0.TickReload = 0

	rom, err := vector.Load(mem, scs.GetVTOR(mem), c0.Layout)
	if err != nil {
		fail(err)
		return
	}
	ctx, err := core.New(c0, rom, mem)
	if err != nil {
		fail(err)
		return
	}
	if err := boot.New(ctx, p.BootOptions(mem, conn)).Run(); err != nil {
		return // halted
	}

	// Nothing drives the spare line yet: keep it masked and drop anything
	// latched before reset so it cannot vector into the default entry.
	d := dispatch.New(ctx, nvic.New(mem))
	idx, err := ctx.Index(spareLine)
	if err != nil {
		fail(err)
		return
	}
	if err := d.Disable(idx); err != nil {
		fail(err)
		return
	}
	if err := d.ClearPending(idx); err != nil {
		fail(err)
		return
	}
	h, err := d.Handler(idx)
	if err != nil {
		fail(err)
		return
	}
	logx.Line("main", "irq", conv.Int(spareLine), "parked on", conv.Addr(h), "in ram:", boolStr(d.InRAM()))

	launchCore1(p, mem, rom, conn)

	select {}
}

// launchCore1 builds core 1 a table in its scratch bank whose entries all
// point at the default handler, so the core parks until given real work.
func launchCore1(p *chip.Profile, mem platform.Memory, rom *vector.Table, conn *bus.Connection) {
	c1, ok := p.Core(1)
	if !ok {
		return
	}
	park, _ := rom.Slot(vector.NMI)
	tbl, err := vector.Build(c1.Layout, c1.Region.Base+c1.Region.Size+0x800, park.Addr, park.Addr, nil)
	if err != nil {
		fail(err)
		return
	}
	for i, w := range tbl.Words() {
		mem.Store32(c1.Region.Base+uint32(i)*vector.WordSize, w)
	}
	platform.Barrier()

	if _, err := p.Starter(mem, conn).StartSecondary(1, c1.Region.Base); err != nil {
		logx.Line("main", "core 1:", err.Error())
	}
}

func boolStr(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
