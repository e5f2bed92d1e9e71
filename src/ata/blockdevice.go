package ata

import "defs"

// ReadSector reads exactly one SectorSize-byte sector, satisfying the
// single-sector fat12.BlockDevice interface on top of the batching
// ReadSectors path.
func (d *Drive) ReadSector(lba uint64, dst []byte) defs.Err_t {
	return d.ReadSectors(lba, 1, dst)
}

// WriteSector writes exactly one SectorSize-byte sector.
func (d *Drive) WriteSector(lba uint64, src []byte) defs.Err_t {
	return d.WriteSectors(lba, 1, src)
}
