package scs

import (
	"testing"

	"vectorcore-go/errcode"
	"vectorcore-go/platform"
)

func TestVTORAndFPU(t *testing.T) {
	sim := platform.NewSim()
	SetVTOR(sim, 0x20000100)
	if GetVTOR(sim) != 0x20000100 {
		t.Fatalf("VTOR = %#x", GetVTOR(sim))
	}
	sim.Poke(CPACR, 0x3)
	GrantFPU(sim)
	if !FPUGranted(sim) || sim.Load32(CPACR)&0x3 != 0x3 {
		t.Fatalf("CPACR = %#x", sim.Load32(CPACR))
	}
}

func TestFaultIsolation(t *testing.T) {
	sim := platform.NewSim()
	if FaultIsolation(sim) {
		t.Fatal("fresh SHCSR should have faults off")
	}
	EnableFaultIsolation(sim)
	if sim.Load32(SHCSR) != 0x70000 || !FaultIsolation(sim) {
		t.Fatalf("SHCSR = %#x", sim.Load32(SHCSR))
	}
}

func TestArmSysTick(t *testing.T) {
	sim := platform.NewSim()
	if err := ArmSysTick(sim, 0); errcode.Of(err) != errcode.UnsupportedClock {
		t.Fatalf("reload 0: %v", err)
	}
	if err := ArmSysTick(sim, MaxReload+1); errcode.Of(err) != errcode.UnsupportedClock {
		t.Fatalf("reload overflow: %v", err)
	}
	if SysTickArmed(sim) {
		t.Fatal("rejected reload must not arm")
	}
	if err := ArmSysTick(sim, 119_999); err != nil {
		t.Fatalf("ArmSysTick: %v", err)
	}
	if !SysTickArmed(sim) || sim.Load32(SysTickRVR) != 119_999 {
		t.Fatalf("CSR=%#x RVR=%d", sim.Load32(SysTickCSR), sim.Load32(SysTickRVR))
	}
	// Reload is programmed before the enable bit.
	w := sim.Writes()
	last := w[len(w)-1]
	if last.Addr != SysTickCSR || last.Value&csrEnable == 0 {
		t.Fatalf("last store = %+v, want CSR enable", last)
	}
	if sim.FirstWrite(SysTickRVR) >= len(w)-1 || sim.WritesTo(SysTickCSR)[0] != 0 {
		t.Fatal("timer must be stopped and reprogrammed before enabling")
	}
}
