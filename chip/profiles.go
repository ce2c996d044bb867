package chip

// -----------------------------------------------------------------------------
// Embedded chip profiles
//
// One profile per supported part. Tokens are shell-style (quoting and #
// comments work); key=value pairs before the first "core" token describe the
// chip, each "core" token opens the description of one core. Boards with an
// external clock synthesiser add synth=<i2c addr> and one synth_reg=<reg>:<val>
// per register write.
// -----------------------------------------------------------------------------

// RP2040: two Cortex-M0+ cores. Tables are relocated into the two 4 KiB
// scratch banks and core 1 is launched through the boot ROM mailbox.
const profRP2040 = `
name=rp2040 hz=125M min_hz=1M max_hz=133M launch=fifo
core id=0 arch=v6m exceptions=16 irqs=26 region=0x20040000:256 tick=1k
core id=1 arch=v6m exceptions=16 irqs=26 region=0x20041000:256 tick=1k
`

const profRP2350 = `
name=rp2350 hz=150M min_hz=1M max_hz=150M launch=fifo
core id=0 arch=v8m exceptions=16 irqs=52 fpu faults region=0x20080000:512 tick=1k
core id=1 arch=v8m exceptions=16 irqs=52 fpu faults region=0x20081000:512 tick=1k
`

const profSAMD21 = `
name=samd21 hz=48M max_hz=48M
flash=0x41004004:1:0xF:24M:1    # NVMCTRL CTRLB.RWS
core id=0 arch=v6m exceptions=16 irqs=29 region=0x20007F00:256 tick=1k
`

const profSAMD51 = `
name=samd51 hz=120M max_hz=120M
flash=0x41004000:8:0xF:24M:5    # NVMCTRL CTRLA.RWS
core id=0 arch=v7m exceptions=16 irqs=137 fpu faults region=0x2002FC00:1024 tick=1k
`

// nRF52840 flash needs no wait-state setup.
const profNRF52840 = `
name=nrf52840 hz=64M max_hz=64M
core id=0 arch=v7m exceptions=16 irqs=48 fpu faults region=0x2003FF00:256 tick=1k
`

// LPC55S69: CPU1 sits behind SYSCON CPUCTRL/CPBOOT, both locked by a key in
// the upper half-word. CPU1 has no FPU.
const profLPC55S69 = `
name=lpc55s69 hz=150M max_hz=150M launch=regs
boot=0x50000804 clock=0x50000800:2 reset=0x50000800:4 release=clear key=0xC0C40000
core id=0 arch=v8m exceptions=16 irqs=60 fpu faults region=0x20043C00:512 tick=1k
core id=1 arch=v8m exceptions=16 irqs=60 faults region=0x20043E00:512 tick=1k
`

var embeddedProfiles = map[string]string{
	"rp2040":   profRP2040,
	"rp2350":   profRP2350,
	"samd21":   profSAMD21,
	"samd51":   profSAMD51,
	"nrf52840": profNRF52840,
	"lpc55s69": profLPC55S69,
}
