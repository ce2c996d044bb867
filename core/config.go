// Package core holds the per-core context: identity, table layout and the
// core's active vector table.
package core

import (
	"vectorcore-go/errcode"
	"vectorcore-go/vector"
)

// Config describes one logical core of a chip. It replaces per-chip
// compile-time specialisation: the dispatch logic only ever sees a Config.
type Config struct {
	ID     int
	Layout vector.Layout

	// FPU grants CP10/CP11 access during boot.
	FPU bool
	// FaultIsolation enables separate MemManage/BusFault/UsageFault
	// reporting as the last boot step.
	FaultIsolation bool

	// Region is the writable window for the relocated table. Zero size
	// means the memory map offers none.
	Region vector.Region

	// TickReload is the SysTick reload value (core clock cycles per tick
	// minus one). Zero leaves the timer off.
	TickReload uint32
	// TickHandler is installed in the SysTick slot before the timer is
	// armed. Zero keeps the entry copied from the read-only table.
	TickHandler uint32
}

func (c Config) Validate() error {
	if c.ID < 0 {
		return errcode.New(errcode.InvalidParams, "core.Config", "negative core id")
	}
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if c.FaultIsolation && !c.Layout.Arch.FaultIsolation() {
		return errcode.New(errcode.InvalidParams, "core.Config", "architecture has no fault isolation")
	}
	return nil
}
