package pci

import "testing"

func TestAddrEncodesEnableBitAndFields(t *testing.T) {
	a := addr(1, 2, 3, 0x10)
	if a&(1<<31) == 0 {
		t.Fatalf("enable bit not set")
	}
	if (a>>16)&0xFF != 1 {
		t.Fatalf("bus field wrong: %#x", a)
	}
	if (a>>11)&0x1F != 2 {
		t.Fatalf("device field wrong: %#x", a)
	}
	if (a>>8)&0x7 != 3 {
		t.Fatalf("function field wrong: %#x", a)
	}
	if a&0x3 != 0 {
		t.Fatalf("low register bits must be zero: %#x", a)
	}
}

func TestFindByClassFilters(t *testing.T) {
	devices := []Device{
		{Class: ClassMassStorage, Subclass: SubclassAHCI},
		{Class: ClassSerialBus, Subclass: SubclassUSB},
		{Class: ClassMassStorage, Subclass: SubclassIDE},
	}
	ahci := FindByClass(devices, ClassMassStorage, SubclassAHCI)
	if len(ahci) != 1 {
		t.Fatalf("FindByClass(AHCI) = %d devices, want 1", len(ahci))
	}
}
