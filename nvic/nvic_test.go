package nvic

import (
	"testing"

	"vectorcore-go/platform"
)

func TestBitMath(t *testing.T) {
	sim := platform.NewSim()
	c := New(sim)

	c.Enable(0)
	c.Enable(33)
	c.Enable(239)

	cases := []struct {
		addr, val uint32
	}{
		{0xE000E100, 1 << 0},
		{0xE000E104, 1 << 1},
		{0xE000E11C, 1 << 15},
	}
	w := sim.Writes()
	if len(w) != len(cases) {
		t.Fatalf("expected %d stores, got %d", len(cases), len(w))
	}
	for i, want := range cases {
		if w[i].Addr != want.addr || w[i].Value != want.val {
			t.Fatalf("store %d = %#x<-%#x, want %#x<-%#x", i, w[i].Addr, w[i].Value, want.addr, want.val)
		}
	}

	sim.ResetLog()
	c.Disable(33)
	c.ClearPending(5)
	w = sim.Writes()
	if w[0].Addr != 0xE000E184 || w[0].Value != 1<<1 {
		t.Fatalf("ICER store = %+v", w[0])
	}
	if w[1].Addr != 0xE000E280 || w[1].Value != 1<<5 {
		t.Fatalf("ICPR store = %+v", w[1])
	}
}

func TestSimulatedSetClear(t *testing.T) {
	sim := platform.NewSim()
	Simulate(sim)
	c := New(sim)

	c.Enable(3)
	c.Enable(4)
	if !c.Enabled(3) || !c.Enabled(4) || c.EnableMask(0) != 0x18 {
		t.Fatalf("mask = %#x", c.EnableMask(0))
	}
	c.Disable(3)
	if c.Enabled(3) || !c.Enabled(4) {
		t.Fatal("disable must only clear its own line")
	}
	c.Disable(3) // already disabled
	if c.EnableMask(0) != 0x10 {
		t.Fatalf("mask after repeated disable = %#x", c.EnableMask(0))
	}

	c.SetPending(40)
	if !c.Pending(40) {
		t.Fatal("pending not set")
	}
	c.ClearPending(40)
	if c.Pending(40) {
		t.Fatal("pending not cleared")
	}
}
