// Command mkfs builds a bootable FAT12 floppy image: a boot sector
// carrying the supplied boot code, a kernel image stored as a regular
// file, and the contents of a skeleton directory copied in flat
// (FAT12 here has no subdirectories, matching the rest of the
// kernel's filesystem support).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"defs"
	"fat12"
)

// These constants, with the values formatFloppy writes directly, give
// the classic 1.44MB floppy BPB: 512-byte
// sectors, one sector per cluster, one reserved sector, two FAT
// copies, 224 root directory entries, 9-sector FATs, 2880 total
// sectors — the same parameters the in-package tests format against.
const (
	totalSectors   = 2880
	sectorsPerFAT  = 9
	rootEntryCount = 224
)

// hostDisk implements fat12.BlockDevice over a host file, the mkfs
// equivalent of the old disk-image builder's role: producing bytes on
// the host that the target machine will later read as a raw disk.
type hostDisk struct {
	f *os.File
}

func (d *hostDisk) ReadSector(lba uint64, dst []byte) defs.Err_t {
	if _, err := d.f.ReadAt(dst, int64(lba)*fat12.SectorSize); err != nil {
		panic(err)
	}
	return 0
}

func (d *hostDisk) WriteSector(lba uint64, src []byte) defs.Err_t {
	if _, err := d.f.WriteAt(src, int64(lba)*fat12.SectorSize); err != nil {
		panic(err)
	}
	return 0
}

func formatFloppy(path string) *hostDisk {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	if err := f.Truncate(totalSectors * fat12.SectorSize); err != nil {
		panic(err)
	}

	var bpb fat12.BPB
	bpb.SetBytesPerSector(fat12.SectorSize)
	bpb.SetSectorsPerCluster(1)
	bpb.SetReservedSectors(1)
	bpb.SetNumFATs(2)
	bpb.SetRootEntryCount(rootEntryCount)
	bpb.SetFATSize16(sectorsPerFAT)
	bpb.SetTotalSectors16(totalSectors)
	copy(bpb.Data[54:62], "FAT12   ")
	bpb.Data[510] = 0x55
	bpb.Data[511] = 0xAA

	d := &hostDisk{f: f}
	if err := d.WriteSector(0, bpb.Data[:]); err != 0 {
		panic("write boot sector failed")
	}
	return d
}

// installBootCode overlays boot loader machine code onto the bytes of
// sector 0 not claimed by the BPB fields or the trailing 0x55AA
// signature (offsets 62-509). It truncates silently if code is larger
// than that window, since that window is all a single boot sector has
// to give.
func installBootCode(d *hostDisk, code []byte) {
	var sector [fat12.SectorSize]byte
	if d.ReadSector(0, sector[:]) != 0 {
		panic("re-read boot sector failed")
	}
	n := len(code)
	if max := 510 - 62; n > max {
		n = max
	}
	copy(sector[62:62+n], code[:n])
	if d.WriteSector(0, sector[:]) != 0 {
		panic("write boot code failed")
	}
}

// addfiles walks skeldir and creates each regular file it finds at the
// FAT12 volume's root. Subdirectories are rejected: FAT12 here is a
// flat root directory only.
func addfiles(fs *fat12.FS_t, skeldir string) error {
	return filepath.WalkDir(skeldir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == skeldir {
			return nil
		}
		if d.IsDir() {
			return fmt.Errorf("mkfs: %q is a subdirectory; FAT12 image supports a flat root only", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		if ferr := fs.Create(name, data); ferr != 0 {
			return fmt.Errorf("mkfs: create %q: error %d", name, ferr)
		}
		return nil
	})
}

func usage() {
	fmt.Printf("Usage: mkfs <bootimage> <kernel image> <output image> <skel dir>\n")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 5 {
		usage()
	}
	bootPath, kernelPath, outputPath, skelDir := os.Args[1], os.Args[2], os.Args[3], os.Args[4]

	disk := formatFloppy(outputPath)

	bootCode, err := os.ReadFile(bootPath)
	if err != nil {
		panic(err)
	}
	installBootCode(disk, bootCode)

	fs, ferr := fat12.Mount(disk)
	if ferr != 0 {
		fmt.Printf("mkfs: mount of freshly formatted image failed: %d\n", ferr)
		os.Exit(1)
	}

	kernelData, err := os.ReadFile(kernelPath)
	if err != nil {
		panic(err)
	}
	if ferr := fs.Create("KERNEL.BIN", kernelData); ferr != 0 {
		fmt.Printf("mkfs: create KERNEL.BIN: error %d\n", ferr)
		os.Exit(1)
	}

	if err := addfiles(fs, skelDir); err != nil {
		fmt.Printf("mkfs: %v\n", err)
		os.Exit(1)
	}

	disk.f.Close()
}
