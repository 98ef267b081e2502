//go:build windows

package shell

import (
	"context"
	"os"
	"os/signal"
)

// SignalEvents turns an interrupt into a quit event. Windows has no user
// signals, so toggling requires a tray or hotkey source.
func SignalEvents(ctx context.Context) <-chan Event {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	events := make(chan Event)
	go func() {
		defer close(events)
		defer signal.Stop(signals)

		select {
		case <-ctx.Done():
		case <-signals:
			select {
			case events <- EventQuit:
			case <-ctx.Done():
			}
		}
	}()

	return events
}
