package ata

import (
	"defs"
	"testing"
)

func TestUseLBA48Selection(t *testing.T) {
	lba48Drive := &Drive{LBA48: true}
	lba28Drive := &Drive{LBA48: false}

	cases := []struct {
		d       *Drive
		lba     uint64
		sectors int
		want    bool
	}{
		{lba28Drive, 0x20000000, 1, false}, // no LBA48 support at all
		{lba48Drive, 100, 1, false},        // small transfer, low LBA
		{lba48Drive, 0x10000000, 1, true},  // LBA beyond 28-bit range
		{lba48Drive, 0, 257, true},         // sector count beyond LBA28's byte field
		{lba48Drive, 0, 256, false},        // exactly at the LBA28 boundary
		{lba48Drive, 0x0FFFFFFE, 257, true}, // request starts below 2^28 but its last sector doesn't
	}
	for _, c := range cases {
		if got := useLBA48(c.d, c.lba, c.sectors); got != c.want {
			t.Errorf("useLBA48(lba48=%v, lba=%#x, sectors=%d) = %v, want %v",
				c.d.LBA48, c.lba, c.sectors, got, c.want)
		}
	}
}

func TestIdentifyModelTrimsTrailingSpace(t *testing.T) {
	ident := make([]uint16, 256)
	model := "QEMU HARDDISK"
	padded := model
	for len(padded) < 40 {
		padded += " "
	}
	for i := 0; i < 20; i++ {
		hi := padded[i*2]
		lo := padded[i*2+1]
		ident[27+i] = uint16(hi)<<8 | uint16(lo)
	}
	got := identifyModel(ident)
	if got != model {
		t.Fatalf("identifyModel() = %q, want %q", got, model)
	}
}

func TestCoarseErrorClassification(t *testing.T) {
	cases := map[defs.Err_t]int{
		ErrNoAddressMark:  1,
		ErrIDNotFound:     1,
		ErrUncorrectable:  1,
		ErrBadBlock:       1,
		ErrCommandAborted: 2,
		ErrDeviceFault:    3,
	}
	for err, want := range cases {
		if got := Coarse(err); got != want {
			t.Errorf("Coarse(%d) = %d, want %d", err, got, want)
		}
	}
}

func TestReadSectorsRejectsWrongBufferSize(t *testing.T) {
	d := &Drive{Present: true}
	buf := make([]byte, SectorSize) // claims 1 sector but asks for 2
	if err := d.ReadSectors(0, 2, buf); err != -defs.EINVAL {
		t.Fatalf("ReadSectors with mismatched buffer = %d, want -EINVAL", err)
	}
}

func TestReadSectorsAbsentDrive(t *testing.T) {
	d := &Drive{Present: false}
	buf := make([]byte, SectorSize)
	if err := d.ReadSectors(0, 1, buf); err != -defs.ENODEV {
		t.Fatalf("ReadSectors on absent drive = %d, want -ENODEV", err)
	}
}

func TestBatchingRespectsMaxSectorsPerTransfer(t *testing.T) {
	total := 300
	batches := 0
	for remaining := total; remaining > 0; {
		batch := remaining
		if batch > MaxSectorsPerTransfer {
			batch = MaxSectorsPerTransfer
		}
		remaining -= batch
		batches++
	}
	if batches != 3 {
		t.Fatalf("300 sectors at batch size %d should take 3 batches, got %d", MaxSectorsPerTransfer, batches)
	}
}
