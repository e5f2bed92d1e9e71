package elfinfo

import (
	"debug/elf"
	"testing"
)

func TestValidateRejectsWrongMachine(t *testing.T) {
	fh := &elf.FileHeader{
		Class: elf.ELFCLASS64, Data: elf.ELFDATA2LSB,
		Type: elf.ET_EXEC, Machine: elf.EM_ARM,
	}
	if err := Validate(fh); err == nil {
		t.Fatalf("expected rejection of non-x86-64 machine")
	}
}

func TestValidateAccepts64BitLittleEndianExec(t *testing.T) {
	fh := &elf.FileHeader{
		Class: elf.ELFCLASS64, Data: elf.ELFDATA2LSB,
		Type: elf.ET_EXEC, Machine: elf.EM_X86_64,
	}
	if err := Validate(fh); err != nil {
		t.Fatalf("Validate rejected a valid header: %v", err)
	}
}

func TestDisassembleDecodesNop(t *testing.T) {
	// 0x90 is the single-byte x86 NOP.
	lines := Disassemble([]byte{0x90, 0x90}, 0x1000, 2)
	if len(lines) != 2 {
		t.Fatalf("Disassemble returned %d lines, want 2", len(lines))
	}
}

func TestSectionByNameMiss(t *testing.T) {
	s := Summary{Sections: []SectionInfo{{Name: ".text"}}}
	if _, ok := SectionByName(s, ".data"); ok {
		t.Fatalf("expected miss for absent section")
	}
}
