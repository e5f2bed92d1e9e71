package fat12

import "defs"

/// RootDir caches the root directory region in memory; like FAT, writes
/// go through the cache and Flush pushes it back to disk.
type RootDir struct {
	dev    BlockDevice
	layout Layout
	raw    []byte
}

/// LoadRootDir reads the entire (fixed-size) root directory region into
/// memory.
func LoadRootDir(dev BlockDevice, layout Layout) (*RootDir, defs.Err_t) {
	raw := make([]byte, layout.RootDirSectors*SectorSize)
	for i := 0; i < layout.RootDirSectors; i++ {
		sec := raw[i*SectorSize : (i+1)*SectorSize]
		if err := dev.ReadSector(uint64(layout.RootDirStart+i), sec); err != 0 {
			return nil, err
		}
	}
	return &RootDir{dev: dev, layout: layout, raw: raw}, 0
}

/// Flush writes the in-memory root directory region back to disk.
func (r *RootDir) Flush() defs.Err_t {
	for i := 0; i < r.layout.RootDirSectors; i++ {
		sec := r.raw[i*SectorSize : (i+1)*SectorSize]
		if err := r.dev.WriteSector(uint64(r.layout.RootDirStart+i), sec); err != 0 {
			return err
		}
	}
	return 0
}

func (r *RootDir) capacity() int { return len(r.raw) / direntSize }

func (r *RootDir) slot(i int) []byte { return r.raw[i*direntSize : (i+1)*direntSize] }

/// List returns every live (non-deleted, non-volume-label, non-LFN)
/// entry in the root directory, stopping at the first free (0x00)
/// slot, which marks the end of the used portion of the directory.
func (r *RootDir) List() []Dirent {
	var out []Dirent
	for i := 0; i < r.capacity(); i++ {
		raw := r.slot(i)
		switch raw[0] {
		case directoryEntryFree:
			return out
		case directoryEntryDeleted:
			continue
		}
		d := parseDirent(raw)
		if d.isVolumeLabel() || d.isLFN() {
			continue
		}
		out = append(out, d)
	}
	return out
}

/// Find looks up a normalized 8.3 name in the root directory.
func (r *RootDir) Find(name string) (Dirent, int, defs.Err_t) {
	for i := 0; i < r.capacity(); i++ {
		raw := r.slot(i)
		if raw[0] == directoryEntryFree {
			break
		}
		if raw[0] == directoryEntryDeleted {
			continue
		}
		d := parseDirent(raw)
		if d.isVolumeLabel() || d.isLFN() {
			continue
		}
		if d.Name == name {
			return d, i, 0
		}
	}
	return Dirent{}, -1, -defs.ENOENT
}

// freeSlot returns the index of the first deleted or never-used slot,
// or -defs.ENOSPC if the directory region is completely full of live
// entries.
func (r *RootDir) freeSlot() (int, defs.Err_t) {
	for i := 0; i < r.capacity(); i++ {
		raw := r.slot(i)
		if raw[0] == directoryEntryFree || raw[0] == directoryEntryDeleted {
			return i, 0
		}
	}
	return 0, -defs.ENOSPC
}

/// Insert writes d into the first available slot.
func (r *RootDir) Insert(d Dirent) defs.Err_t {
	idx, err := r.freeSlot()
	if err != 0 {
		return err
	}
	d.encode(r.slot(idx))
	return 0
}

/// Update rewrites the entry at idx in place (used after appending data
/// changes a file's size or first cluster).
func (r *RootDir) Update(idx int, d Dirent) {
	d.encode(r.slot(idx))
}

/// Delete marks the entry at idx as deleted.
func (r *RootDir) Delete(idx int) {
	r.slot(idx)[0] = directoryEntryDeleted
}
