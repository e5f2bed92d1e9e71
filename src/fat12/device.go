// Package fat12 implements a FAT12 filesystem driver: BIOS Parameter
// Block parsing, 12-bit packed FAT entry access, cluster chain walking,
// and flat 8.3-name root-directory file CRUD.
package fat12

import "defs"

/// BlockDevice is the minimal interface fat12 needs from whatever backs
/// it — normally an ata.Drive, or a byte-slice-backed fake in tests.
/// Every method operates on a single SectorSize-byte sector.
type BlockDevice interface {
	ReadSector(lba uint64, dst []byte) defs.Err_t
	WriteSector(lba uint64, src []byte) defs.Err_t
}

/// SectorSize is fixed at 512 bytes; the BPB's own BytesPerSector field
/// is validated against this rather than driving sizing decisions, since
/// nothing about the cluster math below tolerates a different value.
const SectorSize = 512
