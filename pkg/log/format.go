package log

import (
	"encoding/json"
	"fmt"
	"time"

	config "github.com/mwantia/pastebox/internal/config/server"
)

type record struct {
	time    time.Time
	level   LogLevel
	service string
	message string
}

// formatter renders one record as a newline terminated line.
type formatter func(r record) []byte

type jsonRecord struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

func newFormatter(cfg config.LogServerConfig) formatter {
	layout := cfg.TimeFormat
	if cfg.JSON {
		return func(r record) []byte {
			line, _ := json.Marshal(jsonRecord{
				Timestamp: r.time.Format(layout),
				Level:     r.level.String(),
				Service:   r.service,
				Message:   r.message,
			})
			return append(line, '\n')
		}
	}

	colored := !cfg.NoTerminal && !cfg.NoColor
	return func(r record) []byte {
		line := fmt.Sprintf("[%s] %-5s", r.time.Format(layout), r.level)
		if r.service != "" {
			line += " [" + r.service + "]"
		}
		line += " " + r.message

		if colored {
			return []byte(Color(r.level) + line + "\033[0m\n")
		}
		return []byte(line + "\n")
	}
}
