// Package strconvx parses the numeric fields of chip profiles without
// pulling strconv into MCU images.
package strconvx

import "vectorcore-go/errcode"

func syntax(op, s string) error {
	return errcode.New(errcode.InvalidParams, op, "invalid number "+quote(s))
}

func quote(s string) string { return "\"" + s + "\"" }

// ParseUint parses s with a 0x/0b/0o prefix selecting the base (decimal
// otherwise) and rejects values wider than bitSize bits. Underscores
// between digits are ignored.
func ParseUint(s string, bitSize int) (uint64, error) {
	const op = "strconvx.ParseUint"
	in := s
	base := detectBase(&s)
	if len(s) == 0 {
		return 0, syntax(op, in)
	}
	if bitSize <= 0 || bitSize > 64 {
		bitSize = 64
	}
	limit := uint64(1)<<uint(bitSize) - 1
	if bitSize == 64 {
		limit = ^uint64(0)
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' && i > 0 && i < len(s)-1 {
			continue
		}
		d, ok := digit(c)
		if !ok || d >= base {
			return 0, syntax(op, in)
		}
		if v > (limit-d)/base {
			return 0, errcode.New(errcode.InvalidParams, op, quote(in)+" out of range")
		}
		v = v*base + d
	}
	return v, nil
}

// ParseU32 is ParseUint for register-width values.
func ParseU32(s string) (uint32, error) {
	v, err := ParseUint(s, 32)
	return uint32(v), err
}

// ParseHz accepts a frequency with an optional k, M or G suffix: "125M",
// "32768", "1k".
func ParseHz(s string) (uint32, error) {
	mul := uint64(1)
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'k', 'K':
			mul, s = 1_000, s[:n-1]
		case 'M':
			mul, s = 1_000_000, s[:n-1]
		case 'G':
			mul, s = 1_000_000_000, s[:n-1]
		}
	}
	v, err := ParseUint(s, 32)
	if err != nil {
		return 0, err
	}
	if v*mul > 0xFFFFFFFF {
		return 0, errcode.New(errcode.InvalidParams, "strconvx.ParseHz", quote(s)+" out of range")
	}
	return uint32(v * mul), nil
}

func digit(c byte) (uint64, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint64(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint64(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return uint64(c-'A') + 10, true
	}
	return 0, false
}

func detectBase(ps *string) uint64 {
	s := *ps
	if len(s) >= 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			*ps = s[2:]
			return 16
		case 'b', 'B':
			*ps = s[2:]
			return 2
		case 'o', 'O':
			*ps = s[2:]
			return 8
		}
	}
	return 10
}
