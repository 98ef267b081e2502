package capture

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	config "github.com/mwantia/pastebox/internal/config/server"
	"github.com/mwantia/pastebox/pkg/db/store"
	"github.com/mwantia/pastebox/pkg/log"
)

// Reader returns the current clipboard text.
type Reader func() (string, error)

// Capturer stores clipboard content. Implemented by command.Service.
type Capturer interface {
	Capture(ctx context.Context, content []byte, tags ...string) (int64, error)
}

// Watcher polls the system clipboard and captures every new value.
type Watcher struct {
	Log log.LoggerService `fabric:"logger:capture"`

	target   Capturer
	read     Reader
	system   bool
	interval time.Duration
	maxSize  int

	seeded bool
	last   string
}

// NewWatcher creates a watcher over target. A nil read uses the system
// clipboard.
func NewWatcher(target Capturer, cfg config.CaptureServerConfig, read Reader) *Watcher {
	system := read == nil
	if system {
		read = clipboard.ReadAll
	}

	return &Watcher{
		Log:      log.NewLoggerServiceWithWriter("capture", config.LogServerConfig{Level: "ERROR"}, io.Discard),
		target:   target,
		read:     read,
		system:   system,
		interval: config.ParseDuration(cfg.Interval, 750*time.Millisecond),
		maxSize:  cfg.MaxSize,
	}
}

// Run polls until ctx is done. It returns at once when the system clipboard
// is not supported.
func (w *Watcher) Run(ctx context.Context) error {
	if w.system && clipboard.Unsupported {
		w.Log.Warn("Clipboard is not supported on this system, capture disabled")
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Log.Info("Watching clipboard every %s", w.interval)
	if _, err := w.Poll(ctx); err != nil {
		w.Log.Warn("Failed to capture clipboard: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				w.Log.Warn("Failed to capture clipboard: %v", err)
			}
		}
	}
}

// Poll reads the clipboard once and captures its value if it changed since
// the previous poll. The first poll only records the current value. Blank
// values are ignored.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	value, err := w.read()
	if err != nil {
		w.Log.Debug("Unable to read clipboard: %v", err)
		return false, nil
	}

	if !w.seeded {
		w.seeded = true
		w.last = value
		return false, nil
	}

	if strings.TrimSpace(value) == "" || value == w.last {
		return false, nil
	}

	if w.maxSize > 0 && len(value) > w.maxSize {
		w.last = value
		w.Log.Warn("Skipping clipboard value of %d bytes (max %d)", len(value), w.maxSize)
		return false, nil
	}

	id, err := w.target.Capture(ctx, []byte(value))
	if err != nil {
		// Busy values are retried on the next tick.
		if !errors.Is(err, store.ErrStoreBusy) {
			w.last = value
		}
		return false, err
	}

	w.last = value
	w.Log.Debug("Captured clipboard into paste %d", id)
	return true, nil
}
