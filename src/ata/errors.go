package ata

import "defs"

// Error-register bits, read after a command completes with statusERR
// or statusDF set.
const (
	errAMNF  = 1 << 0 // address mark not found
	errTKZNF = 1 << 1 // track 0 not found
	errABRT  = 1 << 2 // command aborted
	errMCR   = 1 << 3 // media change requested
	errIDNF  = 1 << 4 // sector ID not found
	errMC    = 1 << 5 // media changed
	errUNC   = 1 << 6 // uncorrectable data error
	errBBK   = 1 << 7 // bad block
)

// Fine-grained causes, restored from the original driver's error
// classifier. Every one of these collapses onto one of the four coarse
// defs.Err_t codes below for callers that only care about the coarse
// class; the fine cause, negated, is what ReadSectors/WriteSectors return.
const (
	ErrNoAddressMark  defs.Err_t = 200
	ErrTrackNotFound  defs.Err_t = 201
	ErrCommandAborted defs.Err_t = 202
	ErrIDNotFound     defs.Err_t = 203
	ErrUncorrectable  defs.Err_t = 204
	ErrBadBlock       defs.Err_t = 205
	ErrDeviceFault    defs.Err_t = 206
)

// Coarse returns the 0..3 class an original caller that only checks a
// small enum would see: 0 no error (shouldn't be called), 1 media/data
// error, 2 command/protocol error, 3 device fault. err may be given
// negated, as the driver returns it, or positive.
func Coarse(err defs.Err_t) int {
	if err < 0 {
		err = -err
	}
	switch err {
	case ErrNoAddressMark, ErrTrackNotFound, ErrIDNotFound, ErrUncorrectable, ErrBadBlock:
		return 1
	case ErrCommandAborted:
		return 2
	case ErrDeviceFault:
		return 3
	default:
		return 0
	}
}

func errorFromStatus(d *Drive) defs.Err_t {
	status := d.altStatus()
	if status&statusDF != 0 {
		return -ErrDeviceFault
	}
	errReg := d.inb(regError)
	switch {
	case errReg&errAMNF != 0:
		return -ErrNoAddressMark
	case errReg&errTKZNF != 0:
		return -ErrTrackNotFound
	case errReg&errIDNF != 0:
		return -ErrIDNotFound
	case errReg&errUNC != 0:
		return -ErrUncorrectable
	case errReg&errBBK != 0:
		return -ErrBadBlock
	case errReg&errABRT != 0:
		return -ErrCommandAborted
	default:
		return -defs.EIO
	}
}
