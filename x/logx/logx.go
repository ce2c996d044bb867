// Package logx writes tagged diagnostic lines without fmt.
package logx

import "strings"

var out = defaultOut

// SetOutput replaces the line sink. A nil sink mutes logging.
// It returns a function restoring the previous sink.
func SetOutput(fn func(line string)) (restore func()) {
	prev := out
	if fn == nil {
		fn = func(string) {}
	}
	out = fn
	return func() { out = prev }
}

// Line emits "[tag] part part ...".
func Line(tag string, parts ...string) {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(tag)
	b.WriteByte(']')
	for _, p := range parts {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	out(b.String())
}
