package fat12

import (
	"defs"
	"testing"
)

// memDevice is a byte-slice-backed BlockDevice, the fat12 equivalent of
// ufs/driver.go's file-backed fake AHCI disk.
type memDevice struct {
	sectors [][SectorSize]byte
}

func newMemDevice(nsectors int) *memDevice {
	return &memDevice{sectors: make([][SectorSize]byte, nsectors)}
}

func (m *memDevice) ReadSector(lba uint64, dst []byte) defs.Err_t {
	if int(lba) >= len(m.sectors) {
		return -defs.EINVAL
	}
	copy(dst, m.sectors[lba][:])
	return 0
}

func (m *memDevice) WriteSector(lba uint64, src []byte) defs.Err_t {
	if int(lba) >= len(m.sectors) {
		return -defs.EINVAL
	}
	copy(m.sectors[lba][:], src)
	return 0
}

// formatScenario1 writes a BPB matching the scenario-1 format parameters:
// 512-byte sectors, 1 sector/cluster, 1 reserved sector, 2 FAT copies,
// 224 root entries, 9-sector FATs.
func formatScenario1(t *testing.T, dev *memDevice) {
	t.Helper()
	var bpb BPB
	bpb.SetBytesPerSector(512)
	bpb.SetSectorsPerCluster(1)
	bpb.SetReservedSectors(1)
	bpb.SetNumFATs(2)
	bpb.SetRootEntryCount(224)
	bpb.SetFATSize16(9)
	bpb.SetTotalSectors16(2880)
	copy(bpb.Data[54:62], "FAT12   ")
	bpb.Data[510] = 0x55
	bpb.Data[511] = 0xAA
	if err := dev.WriteSector(0, bpb.Data[:]); err != 0 {
		t.Fatalf("write boot sector: %d", err)
	}
}

func mustMount(t *testing.T, dev *memDevice) *FS_t {
	t.Helper()
	fs, err := Mount(dev)
	if err != 0 {
		t.Fatalf("Mount failed: %d", err)
	}
	return fs
}

func TestMountScenario1Layout(t *testing.T) {
	dev := newMemDevice(2880)
	formatScenario1(t, dev)
	fs := mustMount(t, dev)

	if fs.layout.FATStart != 1 {
		t.Errorf("FATStart = %d, want 1", fs.layout.FATStart)
	}
	if fs.layout.RootDirStart != 1+2*9 {
		t.Errorf("RootDirStart = %d, want %d", fs.layout.RootDirStart, 1+2*9)
	}
	wantRootSectors := (224*32 + SectorSize - 1) / SectorSize
	if fs.layout.RootDirSectors != wantRootSectors {
		t.Errorf("RootDirSectors = %d, want %d", fs.layout.RootDirSectors, wantRootSectors)
	}
	if fs.layout.DataStart != fs.layout.RootDirStart+wantRootSectors {
		t.Errorf("DataStart = %d, want %d", fs.layout.DataStart, fs.layout.RootDirStart+wantRootSectors)
	}
}

func TestFATEntryPackingEvenOdd(t *testing.T) {
	raw := make([]byte, 9*SectorSize)
	f := &FAT{raw: raw, bpb: &BPB{}}
	f.bpb.SetNumFATs(2)
	f.bpb.SetFATSize16(9)

	f.Set(2, 0xABC)
	if got := f.Get(2); got != 0xABC {
		t.Fatalf("Get(2) after Set = %#x, want 0xabc", got)
	}
	f.Set(3, 0x123)
	if got := f.Get(3); got != 0x123 {
		t.Fatalf("Get(3) after Set = %#x, want 0x123", got)
	}
	// entries 2 and 3 share a byte; verify setting 3 didn't corrupt 2.
	if got := f.Get(2); got != 0xABC {
		t.Fatalf("Get(2) after Set(3) = %#x, want unchanged 0xabc", got)
	}
}

func TestChainIncludesTerminalCluster(t *testing.T) {
	raw := make([]byte, 9*SectorSize)
	f := &FAT{raw: raw, bpb: &BPB{}}
	f.bpb.SetNumFATs(2)
	f.bpb.SetFATSize16(9)

	f.Set(2, 3)
	f.Set(3, 4)
	f.Set(4, ClusterEOFHi)

	chain := f.Chain(2)
	want := []int{2, 3, 4}
	if len(chain) != len(want) {
		t.Fatalf("Chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("Chain = %v, want %v", chain, want)
		}
	}
}

func TestChainStopsAtBadCluster(t *testing.T) {
	raw := make([]byte, 9*SectorSize)
	f := &FAT{raw: raw, bpb: &BPB{}}
	f.bpb.SetNumFATs(2)
	f.bpb.SetFATSize16(9)

	f.Set(2, 3)
	f.Set(3, ClusterBad)

	chain := f.Chain(2)
	want := []int{2, 3}
	if len(chain) != len(want) {
		t.Fatalf("Chain = %v, want %v (must stop at ClusterBad)", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("Chain = %v, want %v", chain, want)
		}
	}
}

func TestNormalize83RejectsZeroAndMultipleDots(t *testing.T) {
	if _, err := Normalize83("NODOT"); err == 0 {
		t.Fatalf("Normalize83(\"NODOT\") should be an error")
	}
	if _, err := Normalize83("TWO.DOTS.TXT"); err == 0 {
		t.Fatalf("Normalize83(\"TWO.DOTS.TXT\") should be an error")
	}
	if got, err := Normalize83("file.txt"); err != 0 || got != "FILE.TXT" {
		t.Fatalf("Normalize83(\"file.txt\") = %q, %d, want \"FILE.TXT\", 0", got, err)
	}
}

func TestCreateReadDeleteRoundTrip(t *testing.T) {
	dev := newMemDevice(2880)
	formatScenario1(t, dev)
	fs := mustMount(t, dev)

	content := []byte("hello from the root directory\n")
	if err := fs.Create("hello.txt", content); err != 0 {
		t.Fatalf("Create failed: %d", err)
	}
	if !fs.Exists("hello.txt") {
		t.Fatalf("Exists should be true after Create")
	}

	// remount to verify the data actually reached disk, not just the
	// in-memory cache.
	fs2 := mustMount(t, dev)
	got, err := fs2.Read("hello.txt")
	if err != 0 {
		t.Fatalf("Read failed: %d", err)
	}
	if string(got) != string(content) {
		t.Fatalf("Read = %q, want %q", got, content)
	}

	if err := fs2.Delete("hello.txt"); err != 0 {
		t.Fatalf("Delete failed: %d", err)
	}
	if fs2.Exists("hello.txt") {
		t.Fatalf("Exists should be false after Delete")
	}
}

func TestCreateDuplicateNameRejected(t *testing.T) {
	dev := newMemDevice(2880)
	formatScenario1(t, dev)
	fs := mustMount(t, dev)

	if err := fs.Create("dup.txt", []byte("a")); err != 0 {
		t.Fatalf("first Create failed: %d", err)
	}
	if err := fs.Create("dup.txt", []byte("b")); err != -defs.EEXIST {
		t.Fatalf("second Create = %d, want -EEXIST", err)
	}
}

func TestListSkipsVolumeLabelAndLFN(t *testing.T) {
	dev := newMemDevice(2880)
	formatScenario1(t, dev)
	fs := mustMount(t, dev)

	vol := Dirent{Name: "VOLUME", Attr: attrVolumeID}
	if err := fs.root.Insert(vol); err != 0 {
		t.Fatalf("insert volume label: %d", err)
	}
	lfn := Dirent{Name: "LFNPART", Attr: attrLFN}
	if err := fs.root.Insert(lfn); err != 0 {
		t.Fatalf("insert LFN entry: %d", err)
	}
	if err := fs.Create("real.txt", []byte("x")); err != 0 {
		t.Fatalf("Create: %d", err)
	}

	names := fs.List()
	if len(names) != 1 || names[0] != "REAL.TXT" {
		t.Fatalf("List() = %v, want [REAL.TXT] (volume label and LFN entry should be skipped)", names)
	}
}
