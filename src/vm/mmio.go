package vm

import (
	"mem"
	"runtime"
	"sync"
	"unsafe"
)

func pgAddr(pg *mem.Pg_t) unsafe.Pointer {
	return unsafe.Pointer(pg)
}

/// Switch loads m's PML4 into CR3, making it the active address space on
/// this CPU.
func (m *Mapper) Switch() {
	runtime.Lcr3(uint64(m.PPml4))
}

/// KernelMapper returns a Mapper wrapping the address space the kernel
/// booted into, i.e. the one the patched runtime built before handing
/// control to Go code. There is exactly one of these (§4.1: there is no
/// user/kernel address space split in this kernel). A Mapper from
/// NewMapper starts from an empty PML4 and does not copy these mappings.
func KernelMapper() *Mapper {
	return &Mapper{Pml4: mem.Kpmap(), PPml4: mem.Pa_t(runtime.Get_phys())}
}

// MMIOBase is the first virtual address handed out by the arena. It sits
// just past the kernel's direct map slot (mem.VDIRECT) and below the
// user-space slot (mem.VUSER), in the same per-slot numbering scheme
// mem/dmap.go uses for VREC/VDIRECT/VEND.
const MMIOBase uintptr = uintptr(0x45) << 39

// MMIOEnd bounds the arena so it can never collide with mem.VEND.
const MMIOEnd uintptr = uintptr(0x50) << 39

/// MMIOArena is a bump-pointer allocator for device register windows
/// (LAPIC, HBA, xHCI BARs). Every call returns a fresh, disjoint virtual
/// range; nothing is ever freed back to it, matching how a kernel's
/// device set is fixed after enumeration.
type MMIOArena struct {
	mu   sync.Mutex
	next uintptr
}

/// Arena is the shared MMIO allocator used by every device driver that
/// needs to map a physical register window.
var Arena = &MMIOArena{next: MMIOBase}

/// Map carves out length bytes (rounded up to a page) of virtual address
/// space, maps it to the physical window [pa, pa+length), and returns the
/// virtual base address. It panics if the arena is exhausted, which can
/// only happen after enumerating an implausible number of devices.
func (a *MMIOArena) Map(m *Mapper, pa mem.Pa_t, length int) uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()

	npg := (length + mem.PGSIZE - 1) / mem.PGSIZE
	size := uintptr(npg * mem.PGSIZE)
	va := a.next
	if va+size > MMIOEnd {
		panic("vm: MMIO arena exhausted")
	}
	a.next += size

	flags := mem.PTE_W | mem.PTE_PCD
	m.MapRange(va, pa&mem.PGMASK, int(size), flags)
	return va + uintptr(pa&mem.PGOFFSET)
}
