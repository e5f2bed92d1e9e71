package usb

import "testing"

func TestGenerationOfKnownProgIFs(t *testing.T) {
	cases := map[uint8]Generation{
		progIFUHCI: GenUHCI,
		progIFOHCI: GenOHCI,
		progIFEHCI: GenEHCI,
		progIFXHCI: GenXHCI,
		0xFF:       GenUnknown,
	}
	for progIF, want := range cases {
		if got := generationOf(progIF); got != want {
			t.Fatalf("generationOf(%#x) = %v, want %v", progIF, got, want)
		}
	}
}

func TestGenerationString(t *testing.T) {
	if GenXHCI.String() != "xHCI" {
		t.Fatalf("GenXHCI.String() = %q, want xHCI", GenXHCI.String())
	}
}
