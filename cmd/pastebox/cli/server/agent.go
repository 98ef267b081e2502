package server

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwantia/pastebox/internal/agent"
	config "github.com/mwantia/pastebox/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the PasteBox agent",
		Long: `Start the PasteBox agent.

The agent opens and migrates the paste store, watches the clipboard and
drives the recall window. On unix systems SIGUSR1 toggles the window and
SIGUSR2 reports that it lost focus.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			agent := agent.NewAgent(cfg)
			if err := agent.Serve(context.Background()); err != nil {
				return err
			}

			return nil
		},
	}

	return cmd
}
