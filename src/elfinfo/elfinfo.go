// Package elfinfo inspects ELF binaries the same way the build-time
// chentry tool validates the kernel image: header checks via
// debug/elf, plus an x86-64 disassembly of a chosen section using
// golang.org/x/arch's instruction decoder, for diagnostic dumps.
package elfinfo

import (
	"debug/elf"
	"fmt"
	"os"

	"golang.org/x/arch/x86/x86asm"
)

/// Summary describes a loaded ELF file at the level the boot loader's
/// sanity checks and the kernel's diagnostic dump both care about.
type Summary struct {
	Entry    uint64
	Machine  elf.Machine
	Type     elf.Type
	Sections []SectionInfo
}

/// SectionInfo mirrors the handful of section-header fields useful for
/// a diagnostic listing.
type SectionInfo struct {
	Name string
	Addr uint64
	Size uint64
	Flags elf.SectionFlag
}

// Validate applies the same checks chentry used to gate kernel-image
// rewrites: 64-bit little-endian x86-64 executable.
func Validate(fh *elf.FileHeader) error {
	if fh.Class != elf.ELFCLASS64 {
		return fmt.Errorf("elfinfo: not a 64-bit ELF")
	}
	if fh.Data != elf.ELFDATA2LSB {
		return fmt.Errorf("elfinfo: not little-endian")
	}
	if fh.Type != elf.ET_EXEC {
		return fmt.Errorf("elfinfo: not an executable ELF")
	}
	if fh.Machine != elf.EM_X86_64 {
		return fmt.Errorf("elfinfo: not x86-64")
	}
	return nil
}

/// Inspect opens path, validates it, and summarizes its sections.
func Inspect(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	ef, err := elf.NewFile(f)
	if err != nil {
		return Summary{}, err
	}
	if err := Validate(&ef.FileHeader); err != nil {
		return Summary{}, err
	}

	s := Summary{
		Entry:   ef.Entry,
		Machine: ef.Machine,
		Type:    ef.Type,
	}
	for _, sec := range ef.Sections {
		s.Sections = append(s.Sections, SectionInfo{
			Name: sec.Name, Addr: sec.Addr, Size: sec.Size, Flags: sec.Flags,
		})
	}
	return s, nil
}

/// Disassemble decodes up to limit instructions starting at code[0],
/// which the caller addresses as loading at base. Used to print a
/// crash-site disassembly alongside the register dump on a fatal
/// exception.
func Disassemble(code []byte, base uint64, limit int) []string {
	var lines []string
	off := 0
	for i := 0; i < limit && off < len(code); i++ {
		inst, err := x86asm.Decode(code[off:], 64)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%#x: (bad)", base+uint64(off)))
			off++
			continue
		}
		lines = append(lines, fmt.Sprintf("%#x: %s", base+uint64(off), x86asm.GNUSyntax(inst, base+uint64(off), nil)))
		off += inst.Len
	}
	return lines
}

/// SectionByName returns the section with the given name, if present.
func SectionByName(s Summary, name string) (SectionInfo, bool) {
	for _, sec := range s.Sections {
		if sec.Name == name {
			return sec, true
		}
	}
	return SectionInfo{}, false
}
