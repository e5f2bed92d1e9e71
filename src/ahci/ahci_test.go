package ahci

import "testing"

func TestNumPortsCountsBits(t *testing.T) {
	c := Controller{PortsImpl: 0b1010_0001}
	if got := c.NumPorts(); got != 3 {
		t.Fatalf("NumPorts() = %d, want 3", got)
	}
}

func TestNumPortsNone(t *testing.T) {
	c := Controller{PortsImpl: 0}
	if got := c.NumPorts(); got != 0 {
		t.Fatalf("NumPorts() = %d, want 0", got)
	}
}
