// Package serial drives a 16550-compatible UART as both a diagnostic
// output (Port implements io.Writer) and, via its RX circular buffer, a
// bytes-in path for whatever the kernel wants to read from the debug
// console.
package serial

import (
	"circbuf"
	"util"
)

// COM1 register offsets, relative to the port base.
const (
	regData       = 0
	regIER        = 1
	regFIFOCtl    = 2
	regLineCtl    = 3
	regModemCtl   = 4
	regLineStatus = 5
)

const (
	lineStatusTHRE = 1 << 5 // transmit holding register empty
	lineStatusDR   = 1 << 0 // data ready
)

const com1Base = 0x3F8

const rxBufSize = 256

/// Port represents one UART. COM1 is the only one this kernel wires up.
type Port struct {
	base uint16
	rx   circbuf.Circbuf_t
}

/// COM1 is the kernel's debug console UART.
var COM1 = &Port{base: com1Base}

/// Init programs the UART for 38400 8N1 with FIFOs enabled, the
/// configuration every serial-console kernel starts from.
func Init() {
	p := COM1
	p.rx.Init(rxBufSize)
	util.Outb(p.base+regIER, 0x00) // disable interrupts during setup
	util.Outb(p.base+regLineCtl, 0x80) // enable DLAB to set baud divisor
	util.Outb(p.base+0, 0x03)          // divisor low byte: 38400 baud
	util.Outb(p.base+1, 0x00)          // divisor high byte
	util.Outb(p.base+regLineCtl, 0x03) // 8 bits, no parity, one stop bit
	util.Outb(p.base+regFIFOCtl, 0xC7) // enable FIFO, clear, 14-byte threshold
	util.Outb(p.base+regModemCtl, 0x0B) // DTR/RTS set, OUT2 on to enable the UART's IRQ line
	util.Outb(p.base+regIER, 0x01)      // enable receive-data-available IRQ
}

func (p *Port) transmitReady() bool {
	return util.Inb(p.base+regLineStatus)&lineStatusTHRE != 0
}

/// WriteByte blocks until the transmit holding register is empty, then
/// writes b.
func (p *Port) WriteByte(b byte) {
	for !p.transmitReady() {
	}
	util.Outb(p.base+regData, b)
}

/// Write implements io.Writer, writing every byte of b to the UART. A
/// bare '\n' is preceded by '\r' so a plain terminal renders lines
/// correctly, matching the usual serial-console convention.
func (p *Port) Write(b []byte) (int, error) {
	for _, c := range b {
		if c == '\n' {
			p.WriteByte('\r')
		}
		p.WriteByte(c)
	}
	return len(b), nil
}

// HandleIRQ drains the hardware's receive register into the RX ring
// buffer. It is written for an IRQ4 (COM1's legacy wire) handler, but
// no such handler is installed in this tree and idt.RemapAndMask
// leaves IRQ4 masked, so it runs only when called directly.
func (p *Port) HandleIRQ() {
	for util.Inb(p.base+regLineStatus)&lineStatusDR != 0 {
		b := util.Inb(p.base + regData)
		p.rx.Push(b)
	}
}

/// Read drains up to len(dst) queued received bytes into dst.
func (p *Port) Read(dst []byte) int {
	return p.rx.Drain(dst)
}
