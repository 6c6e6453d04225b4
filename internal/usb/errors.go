package usb

import (
	"fmt"

	"github.com/pkg/errors"
)

// Normalized claim failure causes. A Backend implementation wraps its claim
// errors with these so classification does not depend on gousb error values
// leaking through the Device interface.
var (
	ErrDeviceBusy = errors.New("interface busy")
	ErrDeviceGone = errors.New("device gone")
)

// ErrNoDeviceFound means enumeration retries were exhausted without a
// compatible device appearing. Fatal before the first connection; during a
// reconnect cycle it just extends the loop.
var ErrNoDeviceFound = errors.New("no compatible microphone connected or accessible over USB")

// EnumError means enumerating the bus itself kept failing, which points at
// the USB subsystem rather than a missing device.
type EnumError struct {
	Err error
}

func (e *EnumError) Error() string { return fmt.Sprintf("usb enumeration: %v", e.Err) }
func (e *EnumError) Unwrap() error { return e.Err }

// InitError reports a USB subsystem initialization failure. Always fatal.
type InitError struct {
	Err error
}

func (e *InitError) Error() string { return fmt.Sprintf("usb subsystem init: %v", e.Err) }
func (e *InitError) Unwrap() error { return e.Err }

// OpenError reports that a located device could not be opened after all
// retries.
type OpenError struct {
	Info DeviceInfo
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open device %04x:%04x: %v", e.Info.Identity.Vendor, e.Info.Identity.Product, e.Err)
}
func (e *OpenError) Unwrap() error { return e.Err }

// ClaimKind classifies why claiming the control interfaces failed.
type ClaimKind int

const (
	ClaimUnknown ClaimKind = iota
	// ClaimBusy means another process already holds an interface.
	ClaimBusy
	// ClaimNoDevice means the device disappeared between open and claim.
	ClaimNoDevice
)

func (k ClaimKind) String() string {
	switch k {
	case ClaimBusy:
		return "busy"
	case ClaimNoDevice:
		return "no-device"
	default:
		return "unknown"
	}
}

// ClaimError reports that the two required interfaces could not both be
// claimed after all retries. No interface is left claimed when it is
// returned.
type ClaimError struct {
	Kind ClaimKind
	Err  error
}

func (e *ClaimError) Error() string {
	switch e.Kind {
	case ClaimBusy:
		return "another program is using the microphone already"
	case ClaimNoDevice:
		return "the microphone disappeared while claiming its interfaces"
	default:
		return fmt.Sprintf("claim interfaces: %v", e.Err)
	}
}
func (e *ClaimError) Unwrap() error { return e.Err }

// TransferError reports a control transfer that moved fewer bytes than the
// full packet size. It never terminates the process; the supervisor absorbs
// it with a teardown and reconnect cycle.
type TransferError struct {
	Sent int
	Err  error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("packet transfer failed after %d/%d bytes: %v", e.Sent, PacketSize, e.Err)
	}
	return fmt.Sprintf("short packet transfer: %d/%d bytes", e.Sent, PacketSize)
}
func (e *TransferError) Unwrap() error { return e.Err }

// Process exit codes for failures before the first successful connection.
// Post-connect failures are absorbed by the reconnect supervisor and never
// map to a distinct code.
const (
	ExitUsbInit       = 2
	ExitNoDevice      = 3
	ExitOpenOrClaim   = 4
	exitGenericFailed = 1
)

// ExitCode maps a fatal startup error to its process exit code.
func ExitCode(err error) int {
	var (
		initErr  *InitError
		enumErr  *EnumError
		openErr  *OpenError
		claimErr *ClaimError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &initErr), errors.As(err, &enumErr):
		return ExitUsbInit
	case errors.Is(err, ErrNoDeviceFound):
		return ExitNoDevice
	case errors.As(err, &openErr), errors.As(err, &claimErr):
		return ExitOpenOrClaim
	default:
		return exitGenericFailed
	}
}
