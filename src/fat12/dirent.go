package fat12

import (
	"defs"
	"strings"
)

// direntSize is the fixed 32-byte size of one FAT directory entry.
const direntSize = 32

// Attribute byte bits.
const (
	attrReadOnly = 1 << 0
	attrHidden   = 1 << 1
	attrSystem   = 1 << 2
	attrVolumeID = 1 << 3
	attrDirectory = 1 << 4
	attrArchive  = 1 << 5
	attrLFN      = attrReadOnly | attrHidden | attrSystem | attrVolumeID
)

// First-byte markers for a directory entry slot.
const (
	directoryEntryFree    = 0x00 // this slot and every slot after it are unused
	directoryEntryDeleted = 0xE5
)

/// Dirent is one 8.3 directory entry, the flat (non-subdirectory) kind
/// this filesystem supports.
type Dirent struct {
	Name       string // normalized "NAME.EXT", no padding
	Attr       byte
	FirstCluster int
	Size       uint32
}

func (d *Dirent) isVolumeLabel() bool { return d.Attr&attrVolumeID != 0 }
func (d *Dirent) isLFN() bool         { return d.Attr&attrLFN == attrLFN }

func parseDirent(raw []byte) Dirent {
	name := strings.TrimRight(string(raw[0:8]), " ")
	ext := strings.TrimRight(string(raw[8:11]), " ")
	full := name
	if ext != "" {
		full += "." + ext
	}
	return Dirent{
		Name:         full,
		Attr:         raw[11],
		FirstCluster: int(raw[26]) | int(raw[27])<<8,
		Size:         uint32(raw[28]) | uint32(raw[29])<<8 | uint32(raw[30])<<16 | uint32(raw[31])<<24,
	}
}

func (d *Dirent) encode(raw []byte) {
	for i := range raw[:11] {
		raw[i] = ' '
	}
	base, ext := split83(d.Name)
	copy(raw[0:8], base)
	copy(raw[8:11], ext)
	raw[11] = d.Attr
	raw[26] = byte(d.FirstCluster)
	raw[27] = byte(d.FirstCluster >> 8)
	raw[28] = byte(d.Size)
	raw[29] = byte(d.Size >> 8)
	raw[30] = byte(d.Size >> 16)
	raw[31] = byte(d.Size >> 24)
}

/// Normalize83 upper-cases name and checks that it fits an 8.3 slot; it
/// neither pads nor truncates. It returns -ENAMETOOLONG if the base or
/// extension alone is too long to be represented (LFN entries are not
/// supported — see Non-goals), and -EINVAL if name doesn't split on
/// exactly one dot.
func Normalize83(name string) (string, defs.Err_t) {
	name = strings.ToUpper(name)
	if strings.Count(name, ".") != 1 {
		return "", -defs.EINVAL
	}
	base, ext := split83raw(name)
	if len(base) > 8 || len(ext) > 3 {
		return "", -defs.ENAMETOOLONG
	}
	out := base
	if ext != "" {
		out += "." + ext
	}
	return out, 0
}

func split83raw(name string) (base, ext string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

// split83 splits a normalized "NAME.EXT" string into space-padded 8 and
// 3 byte fields ready to copy into a raw directory entry.
func split83(name string) (base, ext []byte) {
	rawBase, rawExt := split83raw(strings.ToUpper(name))
	base = []byte("        ")
	ext = []byte("   ")
	copy(base, rawBase)
	copy(ext, rawExt)
	return
}
