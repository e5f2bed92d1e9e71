package idt

import "util"

// Legacy 8259 PIC I/O ports: command and data register for each chip.
const (
	picMasterCmd  = 0x20
	picMasterData = 0x21
	picSlaveCmd   = 0xA0
	picSlaveData  = 0xA1

	icw1Init = 0x11 // ICW4 needed, cascade mode, edge triggered
	icw4_8086 = 0x01

	picEOI = 0x20
)

/// IRQBase is the vector the first IRQ (timer) is remapped to. IRQs
/// 0-15 land on vectors IRQBase..IRQBase+15, i.e. 32-47, keeping them
/// clear of the CPU exception range 0-31.
const IRQBase = 32

/// Named legacy IRQ lines. RemapAndMask leaves only IRQATA* (and the
/// IRQ2 cascade) unmasked; IRQTimer and IRQKeyboard are masked off at
/// the PIC like every other line.
const (
	IRQTimer    = 0 // retained for reference; the LAPIC timer is used instead
	IRQKeyboard = 1
	IRQATAPrimary   = 14
	IRQATASecondary = 15
)

/// RemapAndMask reinitializes both PICs to remap IRQ0-15 to vectors
/// 32-47 and then masks every line except the ATA channels (14, 15):
/// this kernel drives its timer off the LAPIC, not the legacy PIT, and
/// has no keyboard/mouse/serial IRQ consumer wired up yet.
func RemapAndMask() {
	// mask every line on both chips while they are reprogrammed
	util.Outb(picMasterData, 0xff)
	util.Outb(picSlaveData, 0xff)

	util.Outb(picMasterCmd, icw1Init)
	util.Iodelay()
	util.Outb(picSlaveCmd, icw1Init)
	util.Iodelay()

	util.Outb(picMasterData, IRQBase)      // ICW2: master offset
	util.Iodelay()
	util.Outb(picSlaveData, IRQBase+8)     // ICW2: slave offset
	util.Iodelay()

	util.Outb(picMasterData, 0x04) // ICW3: slave attached to IR2
	util.Iodelay()
	util.Outb(picSlaveData, 0x02) // ICW3: cascade identity
	util.Iodelay()

	util.Outb(picMasterData, icw4_8086)
	util.Iodelay()
	util.Outb(picSlaveData, icw4_8086)
	util.Iodelay()

	// mask everything but IRQ14/15 (the ATA channels); IRQ2 must stay
	// unmasked on the master so the slave's interrupts cascade through.
	util.Outb(picMasterData, ^uint8(1<<2))
	util.Outb(picSlaveData, ^uint8(1<<(IRQATASecondary-8)|1<<(IRQATAPrimary-8)))
}

/// EOI acknowledges an IRQ at the PIC(s). irq >= 8 requires EOI'ing both
/// the slave and the master (cascaded).
func EOI(irq int) {
	if irq >= 8 {
		util.Outb(picSlaveCmd, picEOI)
	}
	util.Outb(picMasterCmd, picEOI)
}
