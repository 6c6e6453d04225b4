// Package usb locates compatible microphones on the bus and establishes
// exclusive control-transfer sessions with them.
package usb

// Identity is a vendor/product identifier pair. Compatibility is decided by
// exact membership in the allow-list; there are no wildcards.
type Identity struct {
	Vendor  uint16
	Product uint16
}

// DeviceInfo describes one attached device in an enumeration snapshot.
// Bus and Address pin down the physical device so a later open attempt
// targets the same unit even when several identical microphones are
// attached.
type DeviceInfo struct {
	Identity Identity
	Bus      int
	Address  int
}

// Backend abstracts the USB stack. The production implementation wraps
// gousb; tests substitute fakes.
type Backend interface {
	// ListDevices returns a snapshot of currently attached devices. The
	// underlying device list is released before ListDevices returns,
	// regardless of outcome.
	ListDevices() ([]DeviceInfo, error)

	// OpenDevice opens the device described by info.
	OpenDevice(info DeviceInfo) (Device, error)

	// Close releases the backend and everything it still holds.
	Close() error
}

// Device is an opened USB device ready for interface claiming and control
// transfers.
type Device interface {
	// Claim claims the numbered interface and returns a release func.
	Claim(number int) (release func(), err error)

	// SendPacket issues one vendor OUT control transfer carrying p and
	// returns the number of bytes the device acknowledged.
	SendPacket(p []byte) (int, error)

	// ReadPacket issues the vendor IN control transfer variant into p.
	ReadPacket(p []byte) (int, error)

	// Close closes the device handle. Claimed interfaces must be released
	// first.
	Close() error
}
