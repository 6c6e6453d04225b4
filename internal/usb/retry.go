package usb

import "time"

// Bounded retry ladders for connection establishment. These tolerate the
// transient races USB hubs introduce during enumeration. They are distinct
// from the supervisor's unbounded reconnect policy: these give up, that one
// never does.
const (
	enumAttempts = 3
	enumDelay    = 500 * time.Millisecond

	openAttempts = 3
	openDelay    = 200 * time.Millisecond

	claimAttempts = 3
	claimDelay    = 100 * time.Millisecond
)

// retry runs fn up to attempts times, sleeping delay between tries. It
// stops on the first nil error and otherwise returns the last error.
func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(delay)
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
