package main

import (
	"fmt"
	"os"

	"github.com/mwantia/pastebox/cmd/pastebox/cli"
	"github.com/mwantia/pastebox/cmd/pastebox/cli/client"
	"github.com/mwantia/pastebox/cmd/pastebox/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())

	root.AddCommand(client.NewCaptureCommand())
	root.AddCommand(client.NewRecallCommand())
	root.AddCommand(client.NewUseCommand())
	root.AddCommand(client.NewTagCommand())
	root.AddCommand(client.NewUntagCommand())
	root.AddCommand(client.NewReorderCommand())
	root.AddCommand(client.NewEditCommand())
	root.AddCommand(client.NewRemoveCommand())
	root.AddCommand(client.NewTagsCommand())
	root.AddCommand(client.NewMigrateCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
