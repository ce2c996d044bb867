package multicore

import (
	"vectorcore-go/bus"
	"vectorcore-go/core"
	"vectorcore-go/errcode"
	"vectorcore-go/platform"
	"vectorcore-go/vector"
	"vectorcore-go/x/conv"
	"vectorcore-go/x/logx"
)

// Mailbox is the inter-core FIFO pair as seen from the launching core.
type Mailbox interface {
	// Drain discards anything waiting in the receive FIFO.
	Drain()
	Push(v uint32) bool
	// Pop returns false when nothing arrived in time.
	Pop() (uint32, bool)
}

// DefaultAttempts bounds how many times the handshake restarts.
const DefaultAttempts = 16

// FIFOLauncher starts a core parked in the boot ROM's mailbox loop, as on
// RP2040/RP2350. The ROM expects 0, 0, 1, vtor, sp, entry; each word must be
// echoed back, and any mismatch restarts the sequence from the top.
type FIFOLauncher struct {
	roster
	box Mailbox

	// ResetCore, when set, forces the core back into the ROM wait loop
	// before the handshake.
	ResetCore func()
	Attempts  int
}

func NewFIFOLauncher(mem platform.Memory, box Mailbox, primary int, cores []core.Config, conn *bus.Connection) *FIFOLauncher {
	return &FIFOLauncher{roster: newRoster(mem, primary, cores, conn), box: box, Attempts: DefaultAttempts}
}

// StartSecondary hands the core its table pointer, then its initial stack
// pointer and entry point, both taken from slots 0 and 1 of that table.
func (f *FIFOLauncher) StartSecondary(id int, vtor uint32) (*core.Context, error) {
	const op = "multicore.StartSecondary"
	cfg, tbl, err := f.prepare(op, id, vtor)
	if err != nil {
		return nil, err
	}
	sp, _ := tbl.Slot(vector.StackSeed)
	entry, _ := tbl.Slot(vector.Reset)

	if f.ResetCore != nil {
		f.ResetCore()
	}
	if err := f.handshake([6]uint32{0, 0, 1, vtor, sp.Addr, entry.Addr}); err != nil {
		logx.Line("multicore", "core", conv.Int(id), "handshake failed:", err.Error())
		return nil, err
	}
	return f.finish(cfg, tbl)
}

func (f *FIFOLauncher) handshake(seq [6]uint32) error {
	attempts := f.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	i := 0
	for i < len(seq) {
		cmd := seq[i]
		if cmd == 0 {
			// The ROM may be blocked pushing; empty our side and wake it.
			f.box.Drain()
			platform.Sev()
		}
		var echo uint32
		ok := f.box.Push(cmd)
		if ok {
			echo, ok = f.box.Pop()
		}
		if ok && echo == cmd {
			i++
			continue
		}
		attempts--
		if attempts == 0 {
			return errcode.New(errcode.Timeout, "multicore.handshake", "no matching echo at word "+conv.Int(i))
		}
		i = 0
	}
	return nil
}
