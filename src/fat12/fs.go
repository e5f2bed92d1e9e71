package fat12

import "defs"

/// FS_t is a mounted FAT12 volume: the parsed BPB, the in-memory FAT
/// mirror, and the cached root directory, bundled the way ufs.Ufs_t
/// bundles a disk handle with its filesystem and working directory.
type FS_t struct {
	dev BlockDevice
	bpb *BPB
	layout Layout
	fat *FAT
	root *RootDir
}

func clusterToSector(layout Layout, spc int, c int) int {
	return layout.DataStart + (c-FirstDataCluster)*spc
}

/// Mount reads the boot sector, validates it, and loads the FAT and
/// root directory, returning a ready-to-use FS_t.
func Mount(dev BlockDevice) (*FS_t, defs.Err_t) {
	var bpb BPB
	if err := dev.ReadSector(0, bpb.Data[:]); err != 0 {
		return nil, err
	}
	if err := bpb.Validate(); err != 0 {
		return nil, err
	}
	layout := bpb.Layout()
	fat, err := LoadFAT(dev, &bpb, layout)
	if err != 0 {
		return nil, err
	}
	root, err := LoadRootDir(dev, layout)
	if err != 0 {
		return nil, err
	}
	return &FS_t{dev: dev, bpb: &bpb, layout: layout, fat: fat, root: root}, 0
}

/// List returns the names of every file in the root directory.
func (fs *FS_t) List() []string {
	entries := fs.root.List()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

/// Exists reports whether name is present.
func (fs *FS_t) Exists(name string) bool {
	norm, err := Normalize83(name)
	if err != 0 {
		return false
	}
	_, _, err = fs.root.Find(norm)
	return err == 0
}

/// Size returns the byte size of name, or -defs.ENOENT if it doesn't
/// exist.
func (fs *FS_t) Size(name string) (uint32, defs.Err_t) {
	norm, err := Normalize83(name)
	if err != 0 {
		return 0, err
	}
	d, _, err := fs.root.Find(norm)
	if err != 0 {
		return 0, err
	}
	return d.Size, 0
}

// readCluster reads one cluster's worth of data (SectorsPerCluster
// sectors) starting at cluster c.
func (fs *FS_t) readCluster(c int, dst []byte) defs.Err_t {
	spc := fs.bpb.SectorsPerCluster()
	sec := clusterToSector(fs.layout, spc, c)
	for i := 0; i < spc; i++ {
		chunk := dst[i*SectorSize : (i+1)*SectorSize]
		if err := fs.dev.ReadSector(uint64(sec+i), chunk); err != 0 {
			return err
		}
	}
	return 0
}

func (fs *FS_t) writeCluster(c int, src []byte) defs.Err_t {
	spc := fs.bpb.SectorsPerCluster()
	sec := clusterToSector(fs.layout, spc, c)
	for i := 0; i < spc; i++ {
		chunk := src[i*SectorSize : (i+1)*SectorSize]
		if err := fs.dev.WriteSector(uint64(sec+i), chunk); err != 0 {
			return err
		}
	}
	return 0
}

/// Read returns the full contents of name.
func (fs *FS_t) Read(name string) ([]byte, defs.Err_t) {
	norm, err := Normalize83(name)
	if err != 0 {
		return nil, err
	}
	d, _, err := fs.root.Find(norm)
	if err != 0 {
		return nil, err
	}
	if d.Size == 0 {
		return nil, 0
	}
	clusterBytes := fs.bpb.SectorsPerCluster() * SectorSize
	clusters := fs.fat.Chain(d.FirstCluster)
	buf := make([]byte, 0, len(clusters)*clusterBytes)
	tmp := make([]byte, clusterBytes)
	for _, c := range clusters {
		if err := fs.readCluster(c, tmp); err != 0 {
			return nil, err
		}
		buf = append(buf, tmp...)
	}
	if uint32(len(buf)) > d.Size {
		buf = buf[:d.Size]
	}
	return buf, 0
}

/// Create writes a new file named name with the given contents,
/// allocating as many clusters as needed and flushing the FAT and root
/// directory afterward. It returns -defs.EEXIST if name is already
/// present.
func (fs *FS_t) Create(name string, data []byte) defs.Err_t {
	norm, err := Normalize83(name)
	if err != 0 {
		return err
	}
	if fs.Exists(norm) {
		return -defs.EEXIST
	}

	clusterBytes := fs.bpb.SectorsPerCluster() * SectorSize
	var first int
	prev := -1
	remaining := len(data)
	off := 0
	if remaining == 0 {
		c, err := fs.fat.Allocate()
		if err != 0 {
			return err
		}
		first = c
	}
	for remaining > 0 {
		c, err := fs.fat.Allocate()
		if err != 0 {
			return err
		}
		if prev == -1 {
			first = c
		} else {
			fs.fat.Set(prev, c)
		}
		prev = c

		n := remaining
		if n > clusterBytes {
			n = clusterBytes
		}
		buf := make([]byte, clusterBytes)
		copy(buf, data[off:off+n])
		if err := fs.writeCluster(c, buf); err != 0 {
			return err
		}
		off += n
		remaining -= n
	}

	d := Dirent{Name: norm, Attr: attrArchive, FirstCluster: first, Size: uint32(len(data))}
	if err := fs.root.Insert(d); err != 0 {
		return err
	}
	if err := fs.fat.Flush(); err != 0 {
		return err
	}
	return fs.root.Flush()
}

/// Delete removes name, freeing its cluster chain and flushing the FAT
/// and root directory.
func (fs *FS_t) Delete(name string) defs.Err_t {
	norm, err := Normalize83(name)
	if err != 0 {
		return err
	}
	d, idx, err := fs.root.Find(norm)
	if err != 0 {
		return err
	}
	fs.fat.FreeChain(d.FirstCluster)
	fs.root.Delete(idx)
	if err := fs.fat.Flush(); err != 0 {
		return err
	}
	return fs.root.Flush()
}
