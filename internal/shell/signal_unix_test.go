//go:build !windows

package shell

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := SignalEvents(ctx)

	receive := func() Event {
		t.Helper()
		select {
		case e := <-events:
			return e
		case <-time.After(time.Second):
			t.Fatal("no event received")
			return EventQuit
		}
	}

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))
	assert.Equal(t, EventToggle, receive())

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR2))
	assert.Equal(t, EventFocusLost, receive())

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events channel was not closed")
	}
}
