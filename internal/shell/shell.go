package shell

import (
	"context"
	"io"
	"sync"

	config "github.com/mwantia/pastebox/internal/config/server"
	"github.com/mwantia/pastebox/pkg/log"
)

type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

type Event int

const (
	// EventToggle is raised by the global hotkey.
	EventToggle Event = iota
	EventTrayClick
	EventFocusLost
	EventQuit
)

func (e Event) String() string {
	switch e {
	case EventToggle:
		return "toggle"
	case EventTrayClick:
		return "tray-click"
	case EventFocusLost:
		return "focus-lost"
	case EventQuit:
		return "quit"
	default:
		return "unknown"
	}
}

type Notification string

const (
	WindowOpened Notification = "window-opened"
	WindowClosed Notification = "window-closed"
)

// Notifier receives window notifications, typically the recall window.
type Notifier func(n Notification)

// Shell owns the visibility of the recall window. It is driven by events
// and has no access to the store.
type Shell struct {
	Log log.LoggerService `fabric:"logger:shell"`

	mutex sync.Mutex
	state State

	hotkey          string
	hideOnFocusLost bool
	notify          Notifier
}

func NewShell(cfg config.ShellServerConfig, notify Notifier) *Shell {
	if notify == nil {
		notify = func(Notification) {}
	}

	return &Shell{
		Log:             log.NewLoggerServiceWithWriter("shell", config.LogServerConfig{Level: "ERROR"}, io.Discard),
		state:           Hidden,
		hotkey:          cfg.Hotkey,
		hideOnFocusLost: cfg.HideOnFocusLost,
		notify:          notify,
	}
}

func (s *Shell) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

func (s *Shell) Hotkey() string {
	return s.hotkey
}

// Handle applies one event and reports whether the shell should quit.
func (s *Shell) Handle(e Event) bool {
	s.mutex.Lock()
	var note Notification

	switch e {
	case EventToggle, EventTrayClick:
		if s.state == Hidden {
			s.state, note = Visible, WindowOpened
		} else {
			s.state, note = Hidden, WindowClosed
		}
	case EventFocusLost:
		if s.state == Visible && s.hideOnFocusLost {
			s.state, note = Hidden, WindowClosed
		}
	case EventQuit:
		if s.state == Visible {
			s.state, note = Hidden, WindowClosed
		}
	}

	state := s.state
	s.mutex.Unlock()

	s.Log.Debug("Event '%s', window is %s", e, state)
	if note != "" {
		s.notify(note)
	}
	return e == EventQuit
}

// Run consumes events until a quit event arrives, events is closed or ctx
// is done.
func (s *Shell) Run(ctx context.Context, events <-chan Event) error {
	s.Log.Info("Recall window bound to '%s'", s.hotkey)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if s.Handle(e) {
				return nil
			}
		}
	}
}
