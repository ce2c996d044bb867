//go:build !(tinygo && cortexm)

package platform

import "sync"

// Write is one logged store.
type Write struct {
	Addr  uint32
	Value uint32
}

// StoreHook models a register with side effects. It is called with the
// simulator locked and may update any word in words.
type StoreHook func(words map[uint32]uint32, v uint32)

// LoadHook models a register whose read has side effects, such as a FIFO
// pop. Its result is the value read.
type LoadHook func(words map[uint32]uint32) uint32

// Sim is a sparse word-addressed memory with an ordered store log.
type Sim struct {
	mu    sync.Mutex
	words map[uint32]uint32
	hooks map[uint32]StoreHook
	loads map[uint32]LoadHook
	log   []Write
}

func NewSim() *Sim {
	return &Sim{
		words: map[uint32]uint32{},
		hooks: map[uint32]StoreHook{},
		loads: map[uint32]LoadHook{},
	}
}

func (s *Sim) Load32(addr uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h := s.loads[addr]; h != nil {
		return h(s.words)
	}
	return s.words[addr]
}

func (s *Sim) Store32(addr uint32, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, Write{Addr: addr, Value: v})
	if h := s.hooks[addr]; h != nil {
		h(s.words, v)
		return
	}
	s.words[addr] = v
}

// Poke preloads a word without logging, e.g. a flash image.
func (s *Sim) Poke(addr uint32, v uint32) {
	s.mu.Lock()
	s.words[addr] = v
	s.mu.Unlock()
}

// PokeWords preloads consecutive words starting at base.
func (s *Sim) PokeWords(base uint32, ws []uint32) {
	s.mu.Lock()
	for i, w := range ws {
		s.words[base+uint32(i)*4] = w
	}
	s.mu.Unlock()
}

// OnStore installs a side-effect hook for stores to addr.
func (s *Sim) OnStore(addr uint32, h StoreHook) {
	s.mu.Lock()
	s.hooks[addr] = h
	s.mu.Unlock()
}

// OnLoad installs a side-effect hook for loads from addr.
func (s *Sim) OnLoad(addr uint32, h LoadHook) {
	s.mu.Lock()
	s.loads[addr] = h
	s.mu.Unlock()
}

// Writes returns a copy of the store log in program order.
func (s *Sim) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Write(nil), s.log...)
}

// WritesTo returns the values stored to addr, in order.
func (s *Sim) WritesTo(addr uint32) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint32
	for _, w := range s.log {
		if w.Addr == addr {
			out = append(out, w.Value)
		}
	}
	return out
}

// FirstWrite returns the log position of the first store to addr, or -1.
func (s *Sim) FirstWrite(addr uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.log {
		if w.Addr == addr {
			return i
		}
	}
	return -1
}

// ResetLog drops the store log, keeping memory contents.
func (s *Sim) ResetLog() {
	s.mu.Lock()
	s.log = nil
	s.mu.Unlock()
}
