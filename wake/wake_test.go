package wake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignal_WakeBeforeWait(t *testing.T) {
	req := require.New(t)
	sig := NewSignal()

	req.Equal(1, sig.Wake())
	req.True(sig.Wait(), "retained pulse should resolve the wait immediately")
}

func TestSignal_WakeWithPendingPulseIsNoop(t *testing.T) {
	req := require.New(t)
	sig := NewSignal()

	req.Equal(1, sig.Wake())
	req.Equal(0, sig.Wake())

	req.True(sig.Wait())
}

func TestSignal_WakeResumesWaiter(t *testing.T) {
	req := require.New(t)
	sig := NewSignal()

	woken := make(chan bool, 1)
	go func() {
		woken <- sig.Wait()
	}()

	// Give the waiter time to suspend before waking it.
	time.Sleep(10 * time.Millisecond)
	sig.Wake()

	select {
	case ok := <-woken:
		req.True(ok)
	case <-time.After(time.Second):
		t.Fatal("waiter was not resumed")
	}
}

func TestSignal_CancelReleasesWaiter(t *testing.T) {
	req := require.New(t)
	sig := NewSignal()

	woken := make(chan bool, 1)
	go func() {
		woken <- sig.Wait()
	}()

	time.Sleep(10 * time.Millisecond)
	sig.Cancel()

	select {
	case ok := <-woken:
		req.False(ok, "canceled wait must not report a wake")
	case <-time.After(time.Second):
		t.Fatal("waiter was not released by cancel")
	}
}

func TestSignal_CancelIsIdempotent(t *testing.T) {
	req := require.New(t)
	sig := NewSignal()

	sig.Cancel()
	sig.Cancel()

	req.False(sig.Wait(), "wait after cancel must return immediately")
}
