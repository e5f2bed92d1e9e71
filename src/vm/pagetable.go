// Package vm implements the kernel's virtual memory manager: building and
// walking 4-level x86-64 page tables and handing out disjoint virtual
// ranges for device MMIO. There is no demand paging, copy-on-write, or
// user/kernel address space split here — every mapping is installed
// eagerly by the caller, matching the kernel's single-privilege-level
// design.
package vm

import (
	"mem"
	"util"
)

/// PTE_NX marks a page non-executable. The other PTE_* flag bits live in
/// mem (PTE_P, PTE_W, PTE_U, PTE_PCD, PTE_PS, PTE_G, PTE_ADDR) since both
/// the frame allocator and the page table walker need them.
const PTE_NX mem.Pa_t = 1 << 63

/// PTE_WT marks a page write-through rather than write-back.
const PTE_WT mem.Pa_t = 1 << 3

/// PTE_A marks a page accessed.
const PTE_A mem.Pa_t = 1 << 5

/// PTE_D marks a page dirty.
const PTE_D mem.Pa_t = 1 << 6

// index math for a 4-level radix tree: each level contributes 9 bits,
// the bottom 12 bits are the in-page offset.
func pml4idx(va uintptr) uint { return uint(va>>39) & 0x1ff }
func pdptidx(va uintptr) uint { return uint(va>>30) & 0x1ff }
func pdidx(va uintptr) uint   { return uint(va>>21) & 0x1ff }
func ptidx(va uintptr) uint   { return uint(va>>12) & 0x1ff }

/// Mapper owns one top-level page table (a PML4) and the allocator used
/// to create the intermediate tables it references.
type Mapper struct {
	Pml4  *mem.Pmap_t
	PPml4 mem.Pa_t
}

/// NewMapper allocates a fresh, zeroed PML4 and wraps it in a Mapper.
func NewMapper() (*Mapper, bool) {
	pmap, p_pmap, ok := mem.Physmem.Pmap_new()
	if !ok {
		return nil, false
	}
	return &Mapper{Pml4: pmap, PPml4: p_pmap}, true
}

// getOrCreate walks to the next-level table referenced by pte, allocating
// and installing a fresh one if the present bit is clear.
func (m *Mapper) getOrCreate(tbl *mem.Pmap_t, idx uint, uflags mem.Pa_t) *mem.Pmap_t {
	pte := &tbl[idx]
	if *pte&mem.PTE_P == 0 {
		child, p_child, ok := mem.Physmem.Pmap_new()
		if !ok {
			panic("vm: out of memory creating page table")
		}
		*pte = p_child | mem.PTE_P | mem.PTE_W | uflags
		return child
	}
	return pmapAt(*pte & mem.PTE_ADDR)
}

func pmapAt(p mem.Pa_t) *mem.Pmap_t {
	return (*mem.Pmap_t)(pgAddr(mem.Physmem.Dmap(p)))
}

/// MapPage installs a single 4KB mapping from va to pa with the given
/// PTE flags (mem.PTE_W, mem.PTE_U, PTE_NX, ...; mem.PTE_P is added
/// automatically). It is a programmer error to map a va that is already
/// present; callers must UnmapPage first.
func (m *Mapper) MapPage(va uintptr, pa mem.Pa_t, flags mem.Pa_t) {
	if va&uintptr(mem.PGOFFSET) != 0 || pa&mem.PGOFFSET != 0 {
		panic("vm: unaligned mapping")
	}
	pdpt := m.getOrCreate(m.Pml4, pml4idx(va), flags&mem.PTE_U)
	pd := m.getOrCreate(pdpt, pdptidx(va), flags&mem.PTE_U)
	pt := m.getOrCreate(pd, pdidx(va), flags&mem.PTE_U)
	pte := &pt[ptidx(va)]
	if *pte&mem.PTE_P != 0 {
		panic("vm: va already mapped")
	}
	*pte = pa | mem.PTE_P | flags
}

/// UnmapPage clears the mapping for va, returning the physical address
/// that was mapped there and whether a mapping existed at all.
func (m *Mapper) UnmapPage(va uintptr) (mem.Pa_t, bool) {
	pte := m.walk(va)
	if pte == nil || *pte&mem.PTE_P == 0 {
		return 0, false
	}
	pa := *pte & mem.PTE_ADDR
	*pte = 0
	return pa, true
}

// walk returns a pointer to the leaf PTE for va without creating missing
// intermediate tables, or nil if any level along the way is absent.
func (m *Mapper) walk(va uintptr) *mem.Pa_t {
	tbl := m.Pml4
	for _, idx := range []uint{pml4idx(va), pdptidx(va), pdidx(va)} {
		pte := tbl[idx]
		if pte&mem.PTE_P == 0 {
			return nil
		}
		tbl = pmapAt(pte & mem.PTE_ADDR)
	}
	return &tbl[ptidx(va)]
}

/// Translate reports the physical address currently backing va, if any.
func (m *Mapper) Translate(va uintptr) (mem.Pa_t, bool) {
	pte := m.walk(va)
	if pte == nil || *pte&mem.PTE_P == 0 {
		return 0, false
	}
	return (*pte & mem.PTE_ADDR) | mem.Pa_t(va&uintptr(mem.PGOFFSET)), true
}

/// MapRange maps the contiguous run of pages [va, va+length) to the
/// identically-sized physical run starting at pa. length is rounded up
/// to a page boundary.
func (m *Mapper) MapRange(va uintptr, pa mem.Pa_t, length int, flags mem.Pa_t) {
	npg := util.Roundup(length, mem.PGSIZE) / mem.PGSIZE
	for i := 0; i < npg; i++ {
		off := uintptr(i * mem.PGSIZE)
		m.MapPage(va+off, pa+mem.Pa_t(off), flags)
	}
}

/// UnmapRange removes npg consecutive page mappings starting at va.
func (m *Mapper) UnmapRange(va uintptr, npg int) {
	for i := 0; i < npg; i++ {
		m.UnmapPage(va + uintptr(i*mem.PGSIZE))
	}
}
