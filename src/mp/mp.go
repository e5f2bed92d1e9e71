// Package mp detects the number and kind of logical cores present via
// CPUID, and prints a summary at boot. Actual AP (application
// processor) bring-up is out of scope: this kernel runs single-core
// and only reports what it sees.
package mp

import (
	"fmt"
	"util"
)

/// CoreKind distinguishes a hybrid CPU's performance and efficiency
/// cores (Intel's Alder-Lake-and-later "core type" leaf), when the
/// running CPU reports one.
type CoreKind int

const (
	CoreUnknown CoreKind = iota
	CoreStandard
	CorePerformance
	CoreEfficiency
)

func (k CoreKind) String() string {
	switch k {
	case CoreStandard:
		return "standard"
	case CorePerformance:
		return "performance"
	case CoreEfficiency:
		return "efficiency"
	default:
		return "unknown"
	}
}

const (
	leafHybridInfo  = 0x1A
	leafMaxLeaf     = 0x0
	leafFeatureBits = 0x1
	hybridFeatureBit = 1 << 15 // CPUID.07H:EDX[15]
	leafExtFeatures  = 0x7
)

/// Info summarizes what CPUID reports about this core.
type Info struct {
	VendorID   string
	MaxLeaf    uint32
	Hybrid     bool
	Kind       CoreKind
	APICID     uint32
}

func vendorString(ebx, ecx, edx uint32) string {
	b := make([]byte, 0, 12)
	for _, r := range []uint32{ebx, edx, ecx} {
		b = append(b, byte(r), byte(r>>8), byte(r>>16), byte(r>>24))
	}
	return string(b)
}

/// Detect queries CPUID for the calling core's identity and, if the
/// CPU advertises hybrid topology, which core type this is.
func Detect() Info {
	maxLeaf, ebx, ecx, edx := util.Cpuid(leafMaxLeaf, 0)

	info := Info{
		VendorID: vendorString(ebx, ecx, edx),
		MaxLeaf:  maxLeaf,
	}

	_, _, _, featEdx := util.Cpuid(leafFeatureBits, 0)
	info.APICID = featEdx >> 24

	if maxLeaf >= leafExtFeatures {
		_, _, _, extEdx := util.Cpuid(leafExtFeatures, 0)
		info.Hybrid = extEdx&hybridFeatureBit != 0
	}

	if info.Hybrid && maxLeaf >= leafHybridInfo {
		eax, _, _, _ := util.Cpuid(leafHybridInfo, 0)
		coreType := eax >> 24
		switch coreType {
		case 0x20:
			info.Kind = CoreEfficiency
		case 0x40:
			info.Kind = CorePerformance
		default:
			info.Kind = CoreUnknown
		}
	} else {
		info.Kind = CoreStandard
	}

	return info
}

/// Summary renders Info the way a boot log line does: vendor, APIC ID,
/// and core type when known.
func Summary(i Info) string {
	if i.Hybrid {
		return fmt.Sprintf("cpu: vendor=%s apicid=%d type=%s", i.VendorID, i.APICID, i.Kind)
	}
	return fmt.Sprintf("cpu: vendor=%s apicid=%d", i.VendorID, i.APICID)
}
