package client

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwantia/pastebox/internal/command"
	config "github.com/mwantia/pastebox/internal/config/server"
	"github.com/mwantia/pastebox/pkg/db/store"
	"github.com/mwantia/pastebox/pkg/log"
)

type runFunc func(ctx context.Context, cmd *cobra.Command, svc *command.Service, args []string) error

// withService opens and migrates the configured store for the duration of
// one command.
func withService(run runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServerConfig()
		if err != nil {
			return fmt.Errorf("failed to load server configuration: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		logger := log.NewLoggerService("pastebox", cfg.Log)
		s, err := store.Open(ctx, store.ConfigFromServer(cfg.Store, logger.Named("store")))
		if err != nil {
			return fmt.Errorf("failed to open paste store: %w", err)
		}
		defer s.Close()

		svc := command.NewService(s, command.ConfigFromServer(cfg))
		svc.Log = logger.Named("command")

		return run(ctx, cmd, svc, args)
	}
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id '%s'", value)
	}
	return id, nil
}

// readContent joins args, or reads everything from stdin when fromStdin is set.
func readContent(cmd *cobra.Command, args []string, fromStdin bool) ([]byte, error) {
	if fromStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	return []byte(strings.Join(args, " ")), nil
}

// preview renders value on a single line of at most width runes.
func preview(value []byte, width int) string {
	text := strings.Join(strings.Fields(string(value)), " ")

	runes := []rune(text)
	if len(runes) > width {
		return string(runes[:width-3]) + "..."
	}
	return text
}
