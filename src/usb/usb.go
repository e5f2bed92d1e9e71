// Package usb detects USB host controllers on the PCI bus and reports
// which controller generation (UHCI/OHCI/EHCI/xHCI, distinguished by
// PCI Prog IF) each one is. Enumerating devices on the bus and
// transferring data are both out of scope.
package usb

import "pci"

// Prog IF values for PCI class 0x0C subclass 0x03 (serial bus/USB),
// per the PCI ID database.
const (
	progIFUHCI = 0x00
	progIFOHCI = 0x10
	progIFEHCI = 0x20
	progIFXHCI = 0x30
)

/// Generation names a USB host controller's interface generation.
type Generation int

const (
	GenUnknown Generation = iota
	GenUHCI
	GenOHCI
	GenEHCI
	GenXHCI
)

func (g Generation) String() string {
	switch g {
	case GenUHCI:
		return "UHCI"
	case GenOHCI:
		return "OHCI"
	case GenEHCI:
		return "EHCI"
	case GenXHCI:
		return "xHCI"
	default:
		return "unknown"
	}
}

func generationOf(progIF uint8) Generation {
	switch progIF {
	case progIFUHCI:
		return GenUHCI
	case progIFOHCI:
		return GenOHCI
	case progIFEHCI:
		return GenEHCI
	case progIFXHCI:
		return GenXHCI
	default:
		return GenUnknown
	}
}

/// Controller describes one detected USB host controller.
type Controller struct {
	Device     pci.Device
	Generation Generation
}

/// Detect scans the PCI bus for USB host controllers and classifies
/// each by generation.
func Detect() []Controller {
	var out []Controller
	for _, d := range pci.FindByClass(pci.Enumerate(), pci.ClassSerialBus, pci.SubclassUSB) {
		out = append(out, Controller{Device: d, Generation: generationOf(d.ProgIF)})
	}
	return out
}
