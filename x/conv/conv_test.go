package conv

import "testing"

func TestAddr(t *testing.T) {
	cases := map[uint32]string{
		0:          "0x00000000",
		0xE000ED08: "0xE000ED08",
		0x20000100: "0x20000100",
	}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%#x) = %q, want %q", in, got, want)
		}
	}
	var short [4]byte
	if len(U32Hex(short[:], 1)) != 0 {
		t.Fatal("short buffer should yield empty slice")
	}
}

func TestInt(t *testing.T) {
	for in, want := range map[int]string{0: "0", 16: "16", -3: "-3", 496: "496"} {
		if got := Int(in); got != want {
			t.Fatalf("Int(%d) = %q, want %q", in, got, want)
		}
	}
}
