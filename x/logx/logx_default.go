//go:build !rp2040

package logx

func defaultOut(line string) { println(line) }
