package mathx

import "testing"

func TestNextPow2(t *testing.T) {
	cases := map[uint32]uint32{
		0:   1,
		1:   1,
		2:   2,
		3:   4,
		64:  64,
		192: 256,
		256: 256,
		257: 512,
	}
	for in, want := range cases {
		if got := NextPow2(in); got != want {
			t.Fatalf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
	if NextPow2(uint8(200)) != 0 {
		t.Fatal("NextPow2 should wrap to 0 on overflow")
	}
}

func TestAlignment(t *testing.T) {
	if !IsAligned(uint32(0x20000100), 256) {
		t.Fatal("0x20000100 should be 256-aligned")
	}
	if IsAligned(uint32(0x20000080), 256) {
		t.Fatal("0x20000080 is only 128-aligned")
	}
	if IsAligned(uint32(0x100), 0) {
		t.Fatal("zero alignment never matches")
	}
	if !IsPow2(uint32(128)) || IsPow2(uint32(192)) || IsPow2(uint32(0)) {
		t.Fatal("IsPow2 mismatch")
	}
}

func TestCeilDivAndMinMax(t *testing.T) {
	if CeilDiv(uint32(120_000_000), 30_000_000) != 4 {
		t.Fatal("CeilDiv exact")
	}
	if CeilDiv(uint32(120_000_001), 30_000_000) != 5 {
		t.Fatal("CeilDiv round up")
	}
	if CeilDiv(uint32(5), 0) != 0 {
		t.Fatal("CeilDiv by zero")
	}
	if Max(3, 7) != 7 || Min(3, 7) != 3 {
		t.Fatal("Min/Max")
	}
}
