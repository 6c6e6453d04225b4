package usb

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Session is an exclusive connection to an opened microphone with both
// control interfaces claimed. At most one live Session exists at any time;
// it is consumed by the transmitter and closed exactly once, either by the
// supervisor after a transport failure or by the final shutdown path.
type Session struct {
	Info    DeviceInfo
	Profile Profile

	dev      Device
	releases []func()
	closed   bool
}

// NewSession wraps an opened device whose interfaces are already claimed.
// The release funcs run, in order, when the session closes.
func NewSession(info DeviceInfo, profile Profile, dev Device, releases ...func()) *Session {
	return &Session{Info: info, Profile: profile, dev: dev, releases: releases}
}

// SendPacket forwards one OUT control transfer to the device.
func (s *Session) SendPacket(p []byte) (int, error) {
	return s.dev.SendPacket(p)
}

// ReadPacket forwards one IN control transfer from the device.
func (s *Session) ReadPacket(p []byte) (int, error) {
	return s.dev.ReadPacket(p)
}

// Close releases both claimed interfaces and closes the handle. Calling it
// again is a no-op.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, release := range s.releases {
		release()
	}
	s.releases = nil
	if err := s.dev.Close(); err != nil {
		logrus.WithError(err).Debug("closing device handle")
	}
}

func (s *Session) String() string {
	return fmt.Sprintf("%04x:%04x bus %d addr %d (%s profile)",
		s.Info.Identity.Vendor, s.Info.Identity.Product, s.Info.Bus, s.Info.Address, s.Profile.Name)
}
