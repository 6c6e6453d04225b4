package usb

import (
	"time"

	"github.com/google/gousb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Vendor control-transfer parameters the firmware expects. One second per
// packet; the device NAKs longer than that only when it is wedged.
const (
	requestTypeOut  = 0x21
	requestOut      = 0x09
	requestTypeIn   = 0xA1
	requestIn       = 0x01
	wValue          = 0x0300
	wIndex          = 0x0000
	transferTimeout = time.Second
)

type gousbBackend struct {
	ctx *gousb.Context
}

// NewBackend initializes libusb and returns the production Backend. A
// failure here is the one condition the process can never recover from.
func NewBackend() (b Backend, err error) {
	// gousb.NewContext panics when libusb itself cannot initialize.
	defer func() {
		if r := recover(); r != nil {
			err = &InitError{Err: errors.Errorf("%v", r)}
		}
	}()
	return &gousbBackend{ctx: gousb.NewContext()}, nil
}

// ListDevices walks the current device list without opening anything. The
// matcher always declines, so gousb releases the snapshot before returning.
func (b *gousbBackend) ListDevices() ([]DeviceInfo, error) {
	var infos []DeviceInfo
	_, err := b.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		infos = append(infos, DeviceInfo{
			Identity: Identity{Vendor: uint16(desc.Vendor), Product: uint16(desc.Product)},
			Bus:      desc.Bus,
			Address:  desc.Address,
		})
		return false
	})
	if err != nil {
		return nil, errors.Wrap(err, "usb enumeration")
	}
	return infos, nil
}

// OpenDevice reopens the exact unit found during discovery, pinned by bus
// and address in case several identical microphones are attached.
func (b *gousbBackend) OpenDevice(info DeviceInfo) (Device, error) {
	devs, err := b.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Bus == info.Bus && desc.Address == info.Address &&
			uint16(desc.Vendor) == info.Identity.Vendor &&
			uint16(desc.Product) == info.Identity.Product
	})
	if err != nil {
		for _, d := range devs {
			d.Close()
		}
		return nil, errors.Wrap(err, "open device")
	}
	if len(devs) == 0 {
		return nil, errors.Wrap(ErrDeviceGone, "device no longer present")
	}
	dev := devs[0]
	for _, extra := range devs[1:] {
		extra.Close()
	}

	dev.ControlTimeout = transferTimeout
	if err := dev.SetAutoDetach(true); err != nil {
		// Unsupported on some platforms; claiming may still succeed.
		logrus.WithError(err).Debug("auto-detach of kernel driver unavailable")
	}
	return &gousbDevice{dev: dev}, nil
}

func (b *gousbBackend) Close() error {
	return b.ctx.Close()
}

type gousbDevice struct {
	dev *gousb.Device
	cfg *gousb.Config
}

func (d *gousbDevice) Claim(number int) (func(), error) {
	if d.cfg == nil {
		cfg, err := d.dev.Config(1)
		if err != nil {
			return nil, wrapClaimErr(err)
		}
		d.cfg = cfg
	}
	intf, err := d.cfg.Interface(number, 0)
	if err != nil {
		return nil, wrapClaimErr(err)
	}
	return intf.Close, nil
}

func (d *gousbDevice) SendPacket(p []byte) (int, error) {
	return d.dev.Control(requestTypeOut, requestOut, wValue, wIndex, p)
}

func (d *gousbDevice) ReadPacket(p []byte) (int, error) {
	return d.dev.Control(requestTypeIn, requestIn, wValue, wIndex, p)
}

func (d *gousbDevice) Close() error {
	if d.cfg != nil {
		if err := d.cfg.Close(); err != nil {
			logrus.WithError(err).Debug("closing device config")
		}
		d.cfg = nil
	}
	return d.dev.Close()
}

// wrapClaimErr maps libusb claim failures onto the package's normalized
// causes so the connector can classify them.
func wrapClaimErr(err error) error {
	var usbErr gousb.Error
	if errors.As(err, &usbErr) {
		switch usbErr {
		case gousb.ErrorBusy, gousb.ErrorAccess:
			return errors.Wrap(ErrDeviceBusy, err.Error())
		case gousb.ErrorNoDevice, gousb.ErrorNotFound:
			return errors.Wrap(ErrDeviceGone, err.Error())
		}
	}
	return err
}
