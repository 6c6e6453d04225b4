package shutdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlagStartsUnset(t *testing.T) {
	f := NewFlag()
	assert.False(t, f.IsSet())
	select {
	case <-f.Done():
		t.Fatal("done channel closed before Set")
	default:
	}
}

func TestFlagSetIsSticky(t *testing.T) {
	f := NewFlag()
	f.Set()
	f.Set() // second set is harmless

	assert.True(t, f.IsSet())
	select {
	case <-f.Done():
	default:
		t.Fatal("done channel still open after Set")
	}
}

func TestWaitReturnsEarlyOnSet(t *testing.T) {
	f := NewFlag()
	go func() {
		time.Sleep(5 * time.Millisecond)
		f.Set()
	}()

	start := time.Now()
	interrupted := f.Wait(time.Second)

	assert.True(t, interrupted)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "wait must not run out the full duration")
}

func TestWaitRunsFullDurationWhenUnset(t *testing.T) {
	f := NewFlag()

	start := time.Now()
	interrupted := f.Wait(10 * time.Millisecond)

	assert.False(t, interrupted)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
