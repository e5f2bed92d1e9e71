// Package kernel ties every subsystem together into the boot
// sequence: it brings up the physical and virtual memory managers,
// installs the interrupt tables, starts the local APIC timer, probes
// for disks, mounts the root filesystem, creates the first processes,
// and hands off to the preemptive scheduler. Nothing below this
// package knows about boot order; everything above it (Entry) does.
package kernel

import (
	"acpi"
	"ahci"
	"apic"
	"ata"
	"boot"
	"bytes"
	"console"
	"fat12"
	"fmt"
	"idt"
	"mem"
	"mp"
	"oommsg"
	"pci"
	"proc"
	"scall"
	"sched"
	"serial"
	"stats"
	"usb"
	"util"
	"vm"
)

// spuriousVector is programmed into the LAPIC's spurious-interrupt
// register; it must not collide with any exception, IRQ, or the
// syscall gate.
const spuriousVector = 0xFF

// timerTargetHz is the rate the scheduler tick fires at.
const timerTargetHz = 100

var mapper *vm.Mapper
var lapic *apic.LAPIC

// bootCounters tallies how many of each device class boot discovered.
// stats.Stats/stats.Timing are false by default, matching every other
// compile-time toggle in this codebase, so Inc/Add are no-ops until a
// debug build flips them on; Entry writes the fields out to BOOT.PROF
// via stats.WriteProfile regardless, since Profile works off plain
// reflection and doesn't itself gate on those flags.
type bootCounters struct {
	PCIFunctions    stats.Counter_t
	AHCIControllers stats.Counter_t
	USBControllers  stats.Counter_t
	ACPITables      stats.Counter_t
	BootCycles      stats.Cycles_t
}

var counters bootCounters

// demoConsumerPid is the pid consumerDemo runs under, set by Entry
// before the producer is created so producerDemo's zero-argument entry
// point (proc.Create only ever calls entry with no arguments) has a
// target for sched.Unblock.
var demoConsumerPid proc.Pid_t

// trapTrampoline and timerTrampoline are the assembly entry points
// (kept outside this module, in the patched runtime's tree) that build an idt.Frame
// on the stack and call back into idtDispatch / timerDispatch. Their
// addresses are unknown to the Go compiler, so boot code elsewhere
// supplies them; Entry just wires whatever it is handed into the IDT.
func idtDispatch(f *idt.Frame) {
	if int(f.Vector) < 20 {
		idt.Dispatch(f)
		return
	}
	if f.Vector == idt.VecSyscall {
		scall.Dispatch(f)
		return
	}
}

// timerDispatch is installed on the LAPIC timer vector. It hands the
// saved stack pointer to the scheduler and signals end-of-interrupt
// before resuming whatever process the scheduler picked.
func timerDispatch(rsp uintptr) uintptr {
	next := sched.HandleTimerInterrupt(rsp)
	lapic.EOI()
	return next
}

// Entry is the kernel's entry point, called once by the assembly stub
// that the bootloader jumps to. info carries everything the
// bootloader's Limine-style protocol negotiated before handing off.
func Entry(info *boot.BootInfo, trapTrampoline, timerTrampoline, syscallTrampoline uintptr) {
	if !info.Revision.Supported() {
		panic("kernel: unsupported boot protocol revision")
	}

	bootStart := stats.Rdtsc()

	serial.Init()
	fmt.Printf("nucleus: starting\n")

	fb, ok := info.Framebuffer.First()
	var con *console.Console
	if ok {
		cfb := &console.Framebuffer{
			Base: fb.Address, Width: int(fb.Width), Height: int(fb.Height),
			Pitch: int(fb.Pitch), BytesPerPixel: int(fb.BPP) / 8,
		}
		if font, ok := console.ParsePSF1(defaultFont); ok {
			con = console.NewConsole(cfb, font)
			fmt.Printf("nucleus: framebuffer console %dx%d\n", fb.Width, fb.Height)
		}
	} else {
		fmt.Printf("nucleus: no framebuffer; serial console only\n")
	}
	_ = con

	fmt.Printf("nucleus: initializing physical memory\n")
	mem.Phys_init()
	mem.Dmap_init()

	mapper = vm.KernelMapper()
	mapper.Switch()
	fmt.Printf("nucleus: kernel address space active\n")

	go watchOOM()

	fmt.Printf("nucleus: installing interrupt tables\n")
	idt.InstallExceptions(trapTrampoline)
	idt.InstallSyscall(syscallTrampoline)
	idt.InstallTimer(timerTrampoline)
	idt.Load()
	idt.RemapAndMask()

	cpu := mp.Detect()
	fmt.Printf("%s\n", mp.Summary(cpu))

	fmt.Printf("nucleus: starting local APIC timer at %d Hz\n", timerTargetHz)
	lapic = apic.Init(mapper, spuriousVector)
	lapic.Calibrate(timerTargetHz, apic.TSCHz())
	sched.SetTicksPerSec(lapic.TicksPerSec)

	util.EnableInterrupts()

	fmt.Printf("nucleus: enumerating PCI devices\n")
	devices := pci.Enumerate()
	fmt.Printf("nucleus: found %d PCI functions\n", len(devices))
	counters.PCIFunctions = stats.Counter_t(len(devices))

	fmt.Printf("nucleus: probing AHCI controllers\n")
	for _, c := range ahci.Detect(mapper) {
		fmt.Printf("nucleus: AHCI controller at %02x:%02x.%x, %d ports, msi=%v\n",
			c.Device.Bus, c.Device.Slot, c.Device.Func, c.NumPorts(), c.HasMSI)
		counters.AHCIControllers.Inc()
	}

	fmt.Printf("nucleus: probing USB host controllers\n")
	for _, c := range usb.Detect() {
		fmt.Printf("nucleus: USB %s controller at %02x:%02x.%x\n",
			c.Generation, c.Device.Bus, c.Device.Slot, c.Device.Func)
		counters.USBControllers.Inc()
	}

	fmt.Printf("nucleus: probing ATA drives\n")
	ata.Probe()

	rootDrive := -1
	for i := range ata.Drives {
		if ata.Drives[i].Present {
			rootDrive = i
			break
		}
	}
	var fs *fat12.FS_t
	if rootDrive >= 0 {
		mounted, ferr := fat12.Mount(&ata.Drives[rootDrive])
		if ferr != 0 {
			fmt.Printf("nucleus: failed to mount root filesystem: %d\n", ferr)
		} else {
			fs = mounted
			fmt.Printf("nucleus: mounted FAT12 root, %d files\n", len(fs.List()))
		}
	} else {
		fmt.Printf("nucleus: no ATA drive present; running without a filesystem\n")
	}

	rsdp, ok := acpi.FindRSDP(readPhys)
	if ok {
		w := acpi.NewWalker(rsdp, readPhys)
		n := w.WalkAll(rsdp)
		fmt.Printf("nucleus: ACPI: found %d tables\n", n)
		counters.ACPITables = stats.Counter_t(n)
	}

	fmt.Printf("nucleus: starting scheduler\n")
	idlePid, err := proc.Create(funcEntry(idleEntry), allocKernelStack(), proc.Idle)
	if err != 0 {
		panic("kernel: failed to create idle process")
	}
	sched.Init(idlePid)

	consumerPid, err := proc.Create(funcEntry(consumerDemo), allocConsumerStack(), proc.Normal)
	if err != 0 {
		panic("kernel: failed to create consumer demo process")
	}
	demoConsumerPid = consumerPid
	if _, err := proc.Create(funcEntry(producerDemo), allocProducerStack(), proc.Normal); err != 0 {
		panic("kernel: failed to create producer demo process")
	}

	sched.Enable()

	counters.BootCycles.Add(bootStart)
	if fs != nil {
		var buf bytes.Buffer
		if werr := stats.WriteProfile(&buf, counters); werr != nil {
			fmt.Printf("nucleus: failed to encode boot profile: %v\n", werr)
		} else if ferr := fs.Create("BOOT.PROF", buf.Bytes()); ferr != 0 {
			fmt.Printf("nucleus: failed to write boot profile: %d\n", ferr)
		}
	}

	fmt.Printf("nucleus: boot complete\n")
}

// watchOOM logs every out-of-memory notification the frame allocator
// sends. This kernel has no page reclaim or process killer, so there is
// nothing to do but make the condition visible; a future eviction
// policy would live here.
func watchOOM() {
	for msg := range oommsg.OomCh {
		fmt.Printf("nucleus: out of memory, %d bytes requested\n", msg.Need)
		if msg.Resume != nil {
			msg.Resume <- true
		}
	}
}

// readPhys is the physical-memory accessor every collaborator
// (acpi's table walker chief among them) is handed; it goes through
// the direct map so no explicit mapping call is needed for a
// one-shot read.
func readPhys(pa uintptr, n int) []byte {
	return mem.Dmaplen(mem.Pa_t(pa), n)
}

// idleEntry is the idle process's only job: halt until the next
// interrupt, forever.
func idleEntry() {
	for {
		util.HaltUntilInterrupt()
	}
}

// consumerDemo blocks immediately and waits for producerDemo to wake
// it back up, then exits. Exercises sched.BlockCurrent and the
// scheduler's Unblock->Ready transition end to end.
func consumerDemo() {
	fmt.Printf("nucleus: consumer demo blocking\n")
	sched.BlockCurrent()
	fmt.Printf("nucleus: consumer demo woken\n")
	sched.ExitCurrent()
}

// producerDemo yields once, sleeps briefly, then unblocks consumerDemo
// and exits. Exercises sched.Yield, sched.SleepMs, sched.Unblock, and
// sched.ExitCurrent with a real caller, the same producer/consumer
// shape the original kernel's test1/test2 processes demonstrated with
// a bare println loop.
func producerDemo() {
	sched.Yield()
	fmt.Printf("nucleus: producer demo sleeping\n")
	sched.SleepMs(50)
	fmt.Printf("nucleus: producer demo waking consumer\n")
	sched.Unblock(demoConsumerPid)
	sched.ExitCurrent()
}

// defaultFont is the PSF1 glyph bitmap for the framebuffer console.
// Nothing in this tree assigns it, so it is nil, console.ParsePSF1
// rejects it, and Entry creates no framebuffer console.
var defaultFont []byte
