package kernel

import (
	"proc"
	"reflect"
	"unsafe"
)

// idleStack backs the idle process's kernel stack. A static array is
// enough here: the idle process never recurses deeply and outlives
// the kernel, so there's no case for returning its memory.
var idleStack [proc.KernelStackSize]byte

// producerStack and consumerStack back the two demo processes' kernel
// stacks (see kernel.go's producerDemo/consumerDemo), static for the
// same reason idleStack is.
var producerStack [proc.KernelStackSize]byte
var consumerStack [proc.KernelStackSize]byte

func allocKernelStack() uintptr {
	return uintptr(unsafe.Pointer(&idleStack[0]))
}

func allocProducerStack() uintptr {
	return uintptr(unsafe.Pointer(&producerStack[0]))
}

func allocConsumerStack() uintptr {
	return uintptr(unsafe.Pointer(&consumerStack[0]))
}

// funcEntry recovers the machine code address of a Go function value,
// the address proc.Create needs to seed a fresh kernel stack with.
func funcEntry(fn func()) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
