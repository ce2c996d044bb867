//go:build rp2040

package logx

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

const consoleBaud = 115200

var consoleReady bool

// defaultOut writes boot diagnostics to UART0 (GP0/GP1). The UART is
// configured on first use, which is after the clock step of boot.
func defaultOut(line string) {
	if !consoleReady {
		_ = uartx.UART0.Configure(uartx.UARTConfig{
			BaudRate: consoleBaud,
			TX:       machine.GPIO0,
			RX:       machine.GPIO1,
		})
		consoleReady = true
	}
	_, _ = uartx.UART0.Write([]byte(line))
	_, _ = uartx.UART0.Write([]byte("\r\n"))
}
