package defs

/// Err_t is the kernel-wide error currency. Zero means success; a
/// negative value names a failure mnemonically, e.g. -defs.ENOMEM.
/// Callers test err != 0, never err < 0 or err > 0, since 0 is the only
/// success value.
type Err_t int

/// Tid_t identifies a schedulable task within a process.
type Tid_t int

// Error codes, POSIX-flavored. Only the subset the kernel actually
// returns is given a descriptive comment; the rest exist so arithmetic
// on error tables (stats dumps, Stats2String) has a name for every slot.
const (
	EPERM        Err_t = 1  /// operation not permitted
	ENOENT       Err_t = 2  /// no such file or directory
	ESRCH        Err_t = 3  /// no such process
	EINTR        Err_t = 4  /// interrupted
	EIO          Err_t = 5  /// I/O error
	ENXIO        Err_t = 6
	E2BIG        Err_t = 7
	ENOEXEC      Err_t = 8
	EBADF        Err_t = 9
	ECHILD       Err_t = 10
	EAGAIN       Err_t = 11
	ENOMEM       Err_t = 12 /// allocation failed, see oommsg
	EACCES       Err_t = 13
	EFAULT       Err_t = 14 /// bad user address
	ENOTBLK      Err_t = 15
	EBUSY        Err_t = 16
	EEXIST       Err_t = 17 /// file already exists
	EXDEV        Err_t = 18
	ENODEV       Err_t = 19 /// device absent (ATA probe miss)
	ENOTDIR      Err_t = 20
	EISDIR       Err_t = 21
	EINVAL       Err_t = 22 /// malformed argument
	ENFILE       Err_t = 23
	EMFILE       Err_t = 24
	ENOTTY       Err_t = 25
	ETXTBSY      Err_t = 26
	EFBIG        Err_t = 27
	ENOSPC       Err_t = 28 /// filesystem full (FAT12 out of clusters)
	ESPIPE       Err_t = 29
	EROFS        Err_t = 30
	EMLINK       Err_t = 31
	EPIPE        Err_t = 32
	EDOM         Err_t = 33
	ERANGE       Err_t = 34
	ENAMETOOLONG Err_t = 36 /// 8.3 name overflow
	ENOSYS       Err_t = 38
	ENOTEMPTY    Err_t = 39
	ENOHEAP      Err_t = 150 /// kernel heap exhausted
	ENOMMU       Err_t = 151 /// page table slot exhausted
	ETIMEDOUT    Err_t = 152 /// bounded polling loop expired (ATA/APIC)
	ECRC         Err_t = 153 /// FAT12/ATA integrity check failed
)

/// Errstr returns a short mnemonic for err, or "unknown" for an
/// unrecognized code. Used by the serial/console loggers so a bare
/// negative int in a panic message also gets a name.
func Errstr(err Err_t) string {
	if err < 0 {
		err = -err
	}
	switch err {
	case EPERM:
		return "EPERM"
	case ENOENT:
		return "ENOENT"
	case ESRCH:
		return "ESRCH"
	case EINTR:
		return "EINTR"
	case EIO:
		return "EIO"
	case ENXIO:
		return "ENXIO"
	case EBADF:
		return "EBADF"
	case EAGAIN:
		return "EAGAIN"
	case ENOMEM:
		return "ENOMEM"
	case EACCES:
		return "EACCES"
	case EFAULT:
		return "EFAULT"
	case EBUSY:
		return "EBUSY"
	case EEXIST:
		return "EEXIST"
	case ENODEV:
		return "ENODEV"
	case ENOTDIR:
		return "ENOTDIR"
	case EISDIR:
		return "EISDIR"
	case EINVAL:
		return "EINVAL"
	case ENOSPC:
		return "ENOSPC"
	case ENAMETOOLONG:
		return "ENAMETOOLONG"
	case ENOSYS:
		return "ENOSYS"
	case ENOHEAP:
		return "ENOHEAP"
	case ENOMMU:
		return "ENOMMU"
	case ETIMEDOUT:
		return "ETIMEDOUT"
	case ECRC:
		return "ECRC"
	default:
		return "unknown"
	}
}
