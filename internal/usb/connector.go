package usb

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Connector locates a compatible microphone and turns it into a Session.
// Every field with a zero value falls back to the standard retry ladder, so
// `&Connector{Backend: b}` is ready to use.
type Connector struct {
	Backend Backend

	EnumAttempts int
	EnumDelay    time.Duration

	OpenAttempts int
	OpenDelay    time.Duration

	ClaimAttempts int
	ClaimDelay    time.Duration

	Log *logrus.Entry
}

func (c *Connector) defaults() {
	if c.EnumAttempts == 0 {
		c.EnumAttempts = enumAttempts
	}
	if c.EnumDelay == 0 {
		c.EnumDelay = enumDelay
	}
	if c.OpenAttempts == 0 {
		c.OpenAttempts = openAttempts
	}
	if c.OpenDelay == 0 {
		c.OpenDelay = openDelay
	}
	if c.ClaimAttempts == 0 {
		c.ClaimAttempts = claimAttempts
	}
	if c.ClaimDelay == 0 {
		c.ClaimDelay = claimDelay
	}
	if c.Log == nil {
		c.Log = logrus.NewEntry(logrus.StandardLogger())
	}
}

// Find enumerates attached devices and returns the first allow-listed one.
// Transient enumeration errors and empty snapshots are retried. Exhausting
// the retries yields ErrNoDeviceFound, unless enumeration itself never
// produced a snapshot, which is an EnumError: the subsystem is broken, not
// the device missing.
func (c *Connector) Find() (DeviceInfo, error) {
	c.defaults()

	var found DeviceInfo
	var listErr error
	err := retry(c.EnumAttempts, c.EnumDelay, func() error {
		infos, err := c.Backend.ListDevices()
		if err != nil {
			listErr = err
			c.Log.WithError(err).Debug("usb enumeration failed, will retry")
			return err
		}
		listErr = nil
		for _, info := range infos {
			if Compatible(info.Identity) {
				found = info
				return nil
			}
		}
		return ErrNoDeviceFound
	})
	if err != nil {
		if listErr != nil {
			return DeviceInfo{}, &EnumError{Err: listErr}
		}
		return DeviceInfo{}, ErrNoDeviceFound
	}
	c.Log.WithFields(logrus.Fields{
		"vendor":  fmt.Sprintf("%04x", found.Identity.Vendor),
		"product": fmt.Sprintf("%04x", found.Identity.Product),
		"bus":     found.Bus,
		"address": found.Address,
	}).Debug("compatible microphone found")
	return found, nil
}

// Establish opens the located device and claims interfaces 0 and 1. Claim
// success requires both; a lone successful claim is released before the
// next attempt so no dangling claim survives a failure.
func (c *Connector) Establish(info DeviceInfo) (*Session, error) {
	c.defaults()

	var dev Device
	err := retry(c.OpenAttempts, c.OpenDelay, func() error {
		var openErr error
		dev, openErr = c.Backend.OpenDevice(info)
		if openErr != nil {
			c.Log.WithError(openErr).Debug("device open failed, will retry")
		}
		return openErr
	})
	if err != nil {
		return nil, &OpenError{Info: info, Err: err}
	}

	releases, err := c.claimInterfaces(dev)
	if err != nil {
		if closeErr := dev.Close(); closeErr != nil {
			c.Log.WithError(closeErr).Debug("closing device after claim failure")
		}
		return nil, err
	}

	return NewSession(info, ProfileFor(info.Identity), dev, releases...), nil
}

// Connect runs Find followed by Establish.
func (c *Connector) Connect() (*Session, error) {
	info, err := c.Find()
	if err != nil {
		return nil, err
	}
	return c.Establish(info)
}

// claimInterfaces claims interfaces 0 and 1 together, retrying the pair as
// a unit and classifying the terminal failure.
func (c *Connector) claimInterfaces(dev Device) ([]func(), error) {
	var (
		releases []func()
		err0     error
		err1     error
	)
	err := retry(c.ClaimAttempts, c.ClaimDelay, func() error {
		var release0, release1 func()
		release0, err0 = dev.Claim(0)
		release1, err1 = dev.Claim(1)
		if err0 == nil && err1 == nil {
			releases = []func(){release0, release1}
			return nil
		}
		// Never leave a single interface claimed behind a failed pair.
		if err0 == nil {
			release0()
		}
		if err1 == nil {
			release1()
		}
		if err0 != nil {
			return err0
		}
		return err1
	})
	if err != nil {
		return nil, &ClaimError{Kind: classifyClaim(err0, err1), Err: err}
	}
	return releases, nil
}

func classifyClaim(errs ...error) ClaimKind {
	for _, err := range errs {
		if errors.Is(err, ErrDeviceBusy) {
			return ClaimBusy
		}
	}
	for _, err := range errs {
		if errors.Is(err, ErrDeviceGone) {
			return ClaimNoDevice
		}
	}
	return ClaimUnknown
}
