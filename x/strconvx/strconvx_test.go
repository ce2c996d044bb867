package strconvx

import (
	"testing"

	"vectorcore-go/errcode"
)

func TestParseUintBases(t *testing.T) {
	type C struct {
		s    string
		want uint64
	}
	for _, c := range []C{
		{"0", 0},
		{"075", 75}, // bare leading zero stays decimal
		{"0b101", 5},
		{"0o77", 63},
		{"0xff", 255},
		{"0XE000ED08", 0xE000ED08},
		{"125_000_000", 125000000},
	} {
		got, err := ParseUint(c.s, 64)
		if err != nil {
			t.Fatalf("ParseUint(%q) error: %v", c.s, err)
		}
		if got != c.want {
			t.Fatalf("ParseUint(%q) = %d, want %d", c.s, got, c.want)
		}
	}
}

func TestParseUintErrors(t *testing.T) {
	for _, s := range []string{"", "g", "0x", "0b102", "-1", "_1", "1_"} {
		if _, err := ParseUint(s, 64); errcode.Of(err) != errcode.InvalidParams {
			t.Fatalf("ParseUint(%q) err = %v", s, err)
		}
	}
	if _, err := ParseU32("0x100000000"); err == nil {
		t.Fatal("33-bit value accepted as u32")
	}
	if v, err := ParseU32("0xFFFFFFFF"); err != nil || v != 0xFFFFFFFF {
		t.Fatalf("ParseU32 max = %#x, %v", v, err)
	}
	if _, err := ParseUint("256", 8); err == nil {
		t.Fatal("256 accepted as 8-bit")
	}
}

func TestParseHz(t *testing.T) {
	for s, want := range map[string]uint32{
		"125M":  125_000_000,
		"32768": 32768,
		"1k":    1000,
		"4G":    4_000_000_000,
	} {
		got, err := ParseHz(s)
		if err != nil || got != want {
			t.Fatalf("ParseHz(%q) = %d, %v", s, got, err)
		}
	}
	if _, err := ParseHz("5G"); err == nil {
		t.Fatal("5 GHz should overflow")
	}
}
