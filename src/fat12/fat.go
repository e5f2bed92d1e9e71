package fat12

import "defs"

// Special 12-bit cluster values.
const (
	ClusterFree = 0x000
	ClusterBad  = 0xFF7
	ClusterEOFLo = 0xFF8 // 0xFF8-0xFFF are all valid EOF markers
	ClusterEOFHi = 0xFFF
)

// FirstDataCluster is the lowest cluster number that is ever allocated;
// clusters 0 and 1 are reserved (0 means "free" in the FAT's own
// encoding, 1 is reserved for historical media-descriptor reasons).
const FirstDataCluster = 2

/// IsEOF reports whether a 12-bit cluster value marks end-of-chain.
func IsEOF(c int) bool {
	return c >= ClusterEOFLo && c <= ClusterEOFHi
}

/// FAT is the in-memory mirror of the volume's first FAT copy. Reads and
/// writes all go through this mirror; Flush is what actually touches
/// disk, writing the mirror out to every FAT copy in turn so they stay
/// identical.
type FAT struct {
	dev    BlockDevice
	layout Layout
	bpb    *BPB
	raw    []byte // packed 12-bit entries, loaded from the first FAT copy
}

/// LoadFAT reads the first FAT copy off disk into memory.
func LoadFAT(dev BlockDevice, bpb *BPB, layout Layout) (*FAT, defs.Err_t) {
	fatBytes := bpb.FATSize16() * SectorSize
	raw := make([]byte, fatBytes)
	for i := 0; i < bpb.FATSize16(); i++ {
		sec := raw[i*SectorSize : (i+1)*SectorSize]
		if err := dev.ReadSector(uint64(layout.FATStart+i), sec); err != 0 {
			return nil, err
		}
	}
	return &FAT{dev: dev, layout: layout, bpb: bpb, raw: raw}, 0
}

// entryOffset returns the byte offset of the 16-bit word containing
// cluster c's packed 12-bit value, and whether c's nibble is the high
// (odd cluster) or low (even cluster) one.
func entryOffset(c int) (off int, high bool) {
	off = c * 3 / 2
	high = c%2 != 0
	return
}

/// Get returns the raw 12-bit value stored for cluster c.
func (f *FAT) Get(c int) int {
	off, high := entryOffset(c)
	word := uint16(f.raw[off]) | uint16(f.raw[off+1])<<8
	if high {
		return int(word >> 4)
	}
	return int(word & 0x0FFF)
}

/// Set stores a new 12-bit value for cluster c, read-modify-writing the
/// shared byte two adjacent entries straddle.
func (f *FAT) Set(c int, val int) {
	off, high := entryOffset(c)
	word := uint16(f.raw[off]) | uint16(f.raw[off+1])<<8
	if high {
		word = (word & 0x000F) | uint16(val)<<4
	} else {
		word = (word & 0xF000) | uint16(val&0x0FFF)
	}
	f.raw[off] = byte(word)
	f.raw[off+1] = byte(word >> 8)
}

/// Flush writes the in-memory FAT mirror back out to every FAT copy on
/// disk, keeping them identical the way the original driver does.
func (f *FAT) Flush() defs.Err_t {
	for copyIdx := 0; copyIdx < f.bpb.NumFATs(); copyIdx++ {
		base := f.layout.FATStart + copyIdx*f.bpb.FATSize16()
		for i := 0; i < f.bpb.FATSize16(); i++ {
			sec := f.raw[i*SectorSize : (i+1)*SectorSize]
			if err := f.dev.WriteSector(uint64(base+i), sec); err != 0 {
				return err
			}
		}
	}
	return 0
}

/// FindFree does a linear scan from FirstDataCluster for the first free
/// (0x000) cluster, returning -defs.ENOSPC if none exists.
func (f *FAT) FindFree() (int, defs.Err_t) {
	total := len(f.raw) * 2 / 3
	for c := FirstDataCluster; c < total; c++ {
		if f.Get(c) == ClusterFree {
			return c, 0
		}
	}
	return 0, -defs.ENOSPC
}

/// Allocate finds a free cluster, marks it EOF, and returns it.
func (f *FAT) Allocate() (int, defs.Err_t) {
	c, err := f.FindFree()
	if err != 0 {
		return 0, err
	}
	f.Set(c, ClusterEOFHi)
	return c, 0
}

/// Chain walks the cluster chain starting at first, returning every
/// cluster visited in order, the last cluster included — the original
/// driver appends a cluster's data to the result before checking whether
/// its FAT entry is an EOF marker, so the terminal cluster is always
/// part of the file's data, never treated as a sentinel to discard. A
/// ClusterBad link also ends the walk: a corrupted chain must not loop
/// forever chasing a marker that is neither a valid next cluster nor EOF.
func (f *FAT) Chain(first int) []int {
	var clusters []int
	c := first
	for {
		clusters = append(clusters, c)
		next := f.Get(c)
		if IsEOF(next) || next == ClusterFree || next == ClusterBad {
			break
		}
		c = next
	}
	return clusters
}

/// FreeChain marks every cluster in the chain starting at first as free.
func (f *FAT) FreeChain(first int) {
	for _, c := range f.Chain(first) {
		f.Set(c, ClusterFree)
	}
}
