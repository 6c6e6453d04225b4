package controller

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/quadglow/quadglow/internal/shutdown"
	"github.com/quadglow/quadglow/internal/usb"
)

// Reconnect policy. Unlike the connector's bounded ladders, this loop never
// gives up: the controller is meant to run unattended, and only an operator
// signal may end it.
const (
	teardownBackoff = time.Second
	reconnectDelay  = 2 * time.Second
)

// SessionSource produces device sessions. Satisfied by *usb.Connector.
type SessionSource interface {
	Connect() (*usb.Session, error)
}

// Supervisor owns the streaming lifecycle: first connection, continuous
// replay of the command sequence, and teardown+reconnect after transport
// failures.
type Supervisor struct {
	Source SessionSource
	Flag   *shutdown.Flag

	// TeardownBackoff and ReconnectDelay override the reconnect policy for
	// tests. Zero means the defaults above.
	TeardownBackoff time.Duration
	ReconnectDelay  time.Duration

	Transmitter Transmitter
	Log         *logrus.Entry

	state atomic.Int32
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

func (s *Supervisor) setState(next State) {
	prev := State(s.state.Swap(int32(next)))
	if prev != next && s.Log != nil {
		s.Log.WithFields(logrus.Fields{"from": prev.String(), "to": next.String()}).Debug("state change")
	}
}

func (s *Supervisor) defaults() {
	if s.TeardownBackoff == 0 {
		s.TeardownBackoff = teardownBackoff
	}
	if s.ReconnectDelay == 0 {
		s.ReconnectDelay = reconnectDelay
	}
	if s.Log == nil {
		s.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	s.Transmitter.Flag = s.Flag
}

// Run connects to the microphone and replays seq until shutdown. A failure
// to establish the first session is fatal and returned to the caller for
// exit-code mapping; every later failure is absorbed by teardown and an
// unbounded reconnect loop. After any reconnect the sequence restarts from
// its first frame.
func (s *Supervisor) Run(seq []byte) error {
	s.defaults()

	s.setState(Connecting)
	sess, err := s.Source.Connect()
	if err != nil {
		s.setState(ShuttingDown)
		return err
	}
	if err := ValidateSequence(seq, sess.Profile); err != nil {
		sess.Close()
		s.setState(ShuttingDown)
		return err
	}
	s.Log.WithField("device", sess.String()).Info("microphone connected")

	for {
		if s.Flag.IsSet() {
			break
		}
		s.setState(Streaming)
		err := s.Transmitter.StreamOnce(sess, sess.Profile, seq)
		if err == nil {
			// Full pass done; replay from the first frame. The firmware
			// falls back to its default appearance after various hardware
			// events, so it has to be re-driven continuously.
			continue
		}

		var transferErr *usb.TransferError
		if !errors.As(err, &transferErr) {
			// StreamOnce only fails with transfer errors today; treat
			// anything else the same way rather than dying mid-stream.
			s.Log.WithError(err).Warn("unexpected streaming error")
		} else {
			s.Log.WithError(err).Warn("packet transfer failed, reconnecting")
		}

		s.setState(TearingDown)
		sess.Close()
		sess = nil
		if s.Flag.Wait(s.TeardownBackoff) {
			break
		}

		sess = s.reconnect()
		if sess == nil {
			break // shutdown requested mid-reconnect
		}
		s.Log.WithField("device", sess.String()).Info("microphone reconnected")
	}

	s.setState(ShuttingDown)
	if sess != nil {
		sess.Close()
	}
	return nil
}

// reconnect drives discovery and session establishment until one succeeds
// or shutdown is requested. A disconnect never ends the process.
func (s *Supervisor) reconnect() *usb.Session {
	s.setState(Reconnecting)
	for !s.Flag.IsSet() {
		sess, err := s.Source.Connect()
		if err == nil {
			return sess
		}
		s.Log.WithError(err).Debug("reconnect attempt failed")
		if s.Flag.Wait(s.ReconnectDelay) {
			break
		}
	}
	return nil
}
