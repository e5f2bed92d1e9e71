// Package ahci detects SATA controllers on the PCI bus and reports
// their port map. Driving the command lists and issuing actual reads
// and writes through an AHCI HBA is out of scope; ATA PIO is this
// kernel's only disk data path.
package ahci

import (
	"msi"
	"pci"
	"vm"
)

const (
	abarBAR = 5 // AHCI HBA always exposes its MMIO registers at BAR5

	regPI  = 0x0C // ports implemented bitmap, offset into ABAR
	regCAP = 0x00 // host capability register
)

/// Controller describes one detected AHCI HBA: which PCI function it
/// lives at, its mapped register window, and which ports it reports
/// implementing.
type Controller struct {
	Device    pci.Device
	ABAR      uintptr
	PortsImpl uint32
	MSIVector msi.Msivec_t
	HasMSI    bool
}

func readReg(base uintptr, off uintptr) uint32 {
	return *(*uint32)(ptrAt(base + off))
}

// Detect scans the PCI bus for AHCI-class mass storage controllers,
// maps each one's ABAR into the kernel's MMIO arena, and reads the
// ports-implemented bitmap so a caller can print a useful summary.
// It does not enable the controller or touch any command list.
func Detect(m *vm.Mapper) []Controller {
	var out []Controller
	for _, d := range pci.FindByClass(pci.Enumerate(), pci.ClassMassStorage, pci.SubclassAHCI) {
		size := d.BARSize(abarBAR)
		if size == 0 {
			continue
		}
		pa := d.BAR(abarBAR) &^ 0xF
		va := vm.Arena.Map(m, pa32ToPa(pa), int(size))

		c := Controller{Device: d, ABAR: va}
		c.PortsImpl = readReg(va, regPI)
		if v, ok := msi.Alloc(); ok {
			c.MSIVector = v
			c.HasMSI = true
		}
		out = append(out, c)
	}
	return out
}

// NumPorts returns how many of the HBA's 32 possible ports the
// ports-implemented bitmap marks present.
func (c Controller) NumPorts() int {
	n := 0
	for i := 0; i < 32; i++ {
		if c.PortsImpl&(1<<uint(i)) != 0 {
			n++
		}
	}
	return n
}
