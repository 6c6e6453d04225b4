// Package shutdown provides the process-wide cooperative cancellation flag.
//
// The flag is written exactly once, by signal handling, and polled by the
// streaming and reconnect loops. All teardown happens on the main control
// flow after it observes the flag, never inside signal handling itself.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Flag is a one-way cancellation flag. Once set it never resets for the
// lifetime of the process.
type Flag struct {
	set  atomic.Bool
	once sync.Once
	done chan struct{}
}

func NewFlag() *Flag {
	return &Flag{done: make(chan struct{})}
}

// Set marks the flag. Safe to call from multiple goroutines; only the first
// call has any effect.
func (f *Flag) Set() {
	f.set.Store(true)
	f.once.Do(func() { close(f.done) })
}

// IsSet reports whether shutdown has been requested.
func (f *Flag) IsSet() bool {
	return f.set.Load()
}

// Done returns a channel that is closed when the flag is set.
func (f *Flag) Done() <-chan struct{} {
	return f.done
}

// Wait sleeps for d or until the flag is set, whichever comes first.
// It reports whether the flag was set during the wait.
func (f *Flag) Wait(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-f.done:
		return true
	case <-t.C:
		return f.IsSet()
	}
}

// Notify sets the flag when any of the given signals arrives. With no
// signals it defaults to SIGINT and SIGTERM. The handling goroutine does a
// single store and nothing else; no USB or file I/O happens there.
func Notify(f *Flag, sigs ...os.Signal) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		<-ch
		f.Set()
	}()
}
