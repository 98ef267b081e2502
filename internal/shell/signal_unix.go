//go:build !windows

package shell

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalEvents translates process signals into shell events: SIGUSR1
// toggles the window, SIGUSR2 reports lost focus and SIGINT or SIGTERM quit.
// The channel is closed once ctx is done.
func SignalEvents(ctx context.Context) <-chan Event {
	signals := make(chan os.Signal, 4)
	signal.Notify(signals, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGINT, syscall.SIGTERM)

	events := make(chan Event)
	go func() {
		defer close(events)
		defer signal.Stop(signals)

		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-signals:
				select {
				case events <- signalEvent(sig):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events
}

func signalEvent(sig os.Signal) Event {
	switch sig {
	case syscall.SIGUSR1:
		return EventToggle
	case syscall.SIGUSR2:
		return EventFocusLost
	default:
		return EventQuit
	}
}
