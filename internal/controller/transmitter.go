package controller

import (
	"time"

	"github.com/pkg/errors"

	"github.com/quadglow/quadglow/internal/shutdown"
	"github.com/quadglow/quadglow/internal/usb"
)

// frameDelay paces successive frames to the firmware's refresh limit.
const frameDelay = 20 * time.Millisecond

// Transport is the slice of a USB session the transmitter needs. Satisfied
// by *usb.Session.
type Transport interface {
	SendPacket(p []byte) (int, error)
}

// Transmitter walks an already-encoded color-command sequence and sends one
// header+data packet pair per frame. It never interprets the sequence; the
// bytes come from the rgb encoder (or any other collaborator) fully formed.
type Transmitter struct {
	// FrameDelay overrides the inter-frame pacing. Zero means the device
	// default. Tests shrink it.
	FrameDelay time.Duration

	Flag *shutdown.Flag
}

// ValidateSequence checks the collaborator contract: the sequence length
// must be a non-negative multiple of the profile's frame stride.
func ValidateSequence(seq []byte, profile usb.Profile) error {
	if len(seq)%profile.FrameStride != 0 {
		return errors.Errorf("command sequence length %d is not a multiple of the frame stride %d",
			len(seq), profile.FrameStride)
	}
	return nil
}

// StreamOnce sends every frame of seq in order, header first, then the
// frame bytes zero-padded to the packet size. It stops early without error
// when shutdown is requested and returns a *usb.TransferError when the
// transport acknowledges fewer bytes than the full packet.
func (t *Transmitter) StreamOnce(tr Transport, profile usb.Profile, seq []byte) error {
	delay := t.FrameDelay
	if delay == 0 {
		delay = frameDelay
	}
	header := profile.Header()
	packet := make([]byte, usb.PacketSize)
	stride := profile.FrameStride

	for off := 0; off < len(seq); off += stride {
		if t.Flag.IsSet() {
			return nil
		}
		if err := sendFull(tr, header); err != nil {
			return err
		}
		for i := range packet {
			packet[i] = 0
		}
		copy(packet, seq[off:off+stride])
		if err := sendFull(tr, packet); err != nil {
			return err
		}
		if t.Flag.Wait(delay) {
			return nil
		}
	}
	return nil
}

// sendFull requires the device to acknowledge the entire packet; anything
// less is a transport failure.
func sendFull(tr Transport, p []byte) error {
	sent, err := tr.SendPacket(p)
	if err != nil || sent != usb.PacketSize {
		return &usb.TransferError{Sent: sent, Err: err}
	}
	return nil
}
