package fat12

import (
	"defs"
	"util"
)

/// BPB wraps the raw boot-sector bytes and reads its fields on demand,
/// the way fs.Superblock_t reads superblock fields out of a raw page
/// rather than unmarshaling into a Go struct up front.
type BPB struct {
	Data [SectorSize]byte
}

func (b *BPB) fieldr(off, sz int) int   { return util.Readn(b.Data[:], sz, off) }
func (b *BPB) fieldw(off, sz, v int)    { util.Writen(b.Data[:], sz, off, v) }

func (b *BPB) BytesPerSector() int    { return b.fieldr(11, 2) }
func (b *BPB) SectorsPerCluster() int { return b.fieldr(13, 1) }
func (b *BPB) ReservedSectors() int   { return b.fieldr(14, 2) }
func (b *BPB) NumFATs() int           { return b.fieldr(16, 1) }
func (b *BPB) RootEntryCount() int    { return b.fieldr(17, 2) }
func (b *BPB) TotalSectors16() int    { return b.fieldr(19, 2) }
func (b *BPB) MediaType() int         { return b.fieldr(21, 1) }
func (b *BPB) FATSize16() int         { return b.fieldr(22, 2) }
func (b *BPB) SectorsPerTrack() int   { return b.fieldr(24, 2) }
func (b *BPB) NumHeads() int          { return b.fieldr(26, 2) }
func (b *BPB) HiddenSectors() int     { return b.fieldr(28, 4) }
func (b *BPB) TotalSectors32() int    { return b.fieldr(32, 4) }

func (b *BPB) SetBytesPerSector(v int)    { b.fieldw(11, 2, v) }
func (b *BPB) SetSectorsPerCluster(v int) { b.fieldw(13, 1, v) }
func (b *BPB) SetReservedSectors(v int)   { b.fieldw(14, 2, v) }
func (b *BPB) SetNumFATs(v int)           { b.fieldw(16, 1, v) }
func (b *BPB) SetRootEntryCount(v int)    { b.fieldw(17, 2, v) }
func (b *BPB) SetTotalSectors16(v int)    { b.fieldw(19, 2, v) }
func (b *BPB) SetFATSize16(v int)         { b.fieldw(22, 2, v) }
func (b *BPB) SetTotalSectors32(v int)    { b.fieldw(32, 4, v) }

// BootSignature is the byte pair that must terminate sector 0 on any
// valid boot sector (0x55 0xAA at offsets 510-511).
const (
	bootSigOff = 510
	bootSigLo  = 0x55
	bootSigHi  = 0xAA
)

/// Validate checks the boot signature and the heuristics the distilled
/// driver uses to accept a volume as FAT12: either the FAT12/16
/// fs_type string at offset 54 starts with "FAT12", or (the
/// common case for media formatted by simpler tools) bytes-per-sector
/// is exactly 512 and sectors-per-cluster is nonzero.
func (b *BPB) Validate() defs.Err_t {
	if b.Data[bootSigOff] != bootSigLo || b.Data[bootSigOff+1] != bootSigHi {
		return -defs.EINVAL
	}
	fsType := string(b.Data[54:62])
	looksFAT12 := fsType[:5] == "FAT12"
	looksConventional := b.BytesPerSector() == SectorSize && b.SectorsPerCluster() > 0
	if !looksFAT12 && !looksConventional {
		return -defs.EINVAL
	}
	return 0
}

/// Layout derives the three region boundaries (in sectors from the
/// start of the volume) every other part of the driver needs: where the
/// FAT copies start, where the root directory starts, and where the
/// data (cluster) region starts.
type Layout struct {
	FATStart      int
	RootDirStart  int
	RootDirSectors int
	DataStart     int
}

func (b *BPB) Layout() Layout {
	fatStart := b.ReservedSectors()
	fatBytes := b.NumFATs() * b.FATSize16()
	rootDirStart := fatStart + fatBytes
	rootDirBytes := b.RootEntryCount() * direntSize
	rootDirSectors := util.Roundup(rootDirBytes, SectorSize) / SectorSize
	dataStart := rootDirStart + rootDirSectors
	return Layout{
		FATStart:       fatStart,
		RootDirStart:   rootDirStart,
		RootDirSectors: rootDirSectors,
		DataStart:      dataStart,
	}
}
